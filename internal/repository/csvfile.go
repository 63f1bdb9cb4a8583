package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/expense_forecast/internal/model"
)

// Required header columns in the input file.
const (
	ColumnDate     = "Date"
	ColumnCity     = "City"
	ColumnCategory = "Exp Type"
	ColumnAmount   = "Amount"
)

// DateLayout is the transaction date format, e.g. "14-Oct-14".
const DateLayout = "2-Jan-06"

// SchemaError reports required columns missing from the file header.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns %v", e.Path, e.Missing)
}

// ParseError reports an unparseable value in a data row. Any parse
// error aborts ingestion; no partial transaction set is returned.
type ParseError struct {
	Path   string
	Row    int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %d: column %q: %v", e.Path, e.Row, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CSVRepository reads transactions from a delimited file. The file is
// parsed on every call; there is no caching, so repeated reads of the
// same file yield identical results.
type CSVRepository struct {
	path string
}

// NewCSVRepository creates a repository over the given file path.
func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path}
}

// GetTransactions parses the file and returns transactions matching
// the filter, in file order.
func (r *CSVRepository) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, errors.Wrap(err, "opening transactions file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", r.path)
	}

	columns, err := r.mapColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	row := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s row %d", r.path, row+1)
		}
		row++

		t, err := r.parseRecord(record, columns, row)
		if err != nil {
			return nil, err
		}

		if !filter.Matches(&t) {
			continue
		}
		t.GenerateID()
		transactions = append(transactions, t)
	}

	return transactions, nil
}

type columnIndex struct {
	date     int
	city     int
	category int
	amount   int
}

func (r *CSVRepository) mapColumns(header []string) (columnIndex, error) {
	index := map[string]int{}
	for i, name := range header {
		index[name] = i
	}

	var missing []string
	for _, name := range []string{ColumnDate, ColumnCity, ColumnCategory, ColumnAmount} {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, &SchemaError{Path: r.path, Missing: missing}
	}

	return columnIndex{
		date:     index[ColumnDate],
		city:     index[ColumnCity],
		category: index[ColumnCategory],
		amount:   index[ColumnAmount],
	}, nil
}

func (r *CSVRepository) parseRecord(record []string, columns columnIndex, row int) (model.Transaction, error) {
	date, err := time.Parse(DateLayout, record[columns.date])
	if err != nil {
		return model.Transaction{}, &ParseError{Path: r.path, Row: row, Column: ColumnDate, Err: err}
	}

	amount, err := decimal.NewFromString(record[columns.amount])
	if err != nil {
		return model.Transaction{}, &ParseError{Path: r.path, Row: row, Column: ColumnAmount, Err: err}
	}

	return model.Transaction{
		Date:     date.UTC(),
		City:     record[columns.city],
		Category: record[columns.category],
		Amount:   amount,
	}, nil
}
