package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kasirpos/kasirpos-backend/internal/products"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
	"github.com/kasirpos/kasirpos-backend/pkg/logger"
)

const expectedColumns = 4

var centsPerUnit = decimal.NewFromInt(100)

// RowError records why a single CSV row was skipped.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Report summarizes one bulk import run.
type Report struct {
	Imported   int        `json:"imported"`
	Skipped    int        `json:"skipped"`
	Duplicates []string   `json:"duplicates"`
	Errors     []RowError `json:"errors,omitempty"`
}

type productCreator interface {
	CreateProduct(ctx context.Context, input products.CreateProductInput) (*products.ProductDTO, error)
}

// Service imports catalog rows from an uploaded CSV file.
type Service struct {
	products productCreator
	logg     *logger.Logger
}

// NewService constructs the importer.
func NewService(productSvc productCreator, logg *logger.Logger) (*Service, error) {
	if productSvc == nil {
		return nil, fmt.Errorf("product service required")
	}
	return &Service{products: productSvc, logg: logg}, nil
}

// Import reads a CSV stream with a header row and columns
// code,name,price,stock. Rows are processed one at a time: bad rows and
// duplicate codes are skipped and reported, good rows are persisted, and one
// broken row never aborts the run.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid csv file")
	}
	if len(header) < expectedColumns {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv header must have at least 4 columns").
			WithDetails(map[string]any{"columns": len(header)})
	}

	report := &Report{Duplicates: []string{}}
	row := 1
	for {
		row++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.skip(row, "malformed row")
			continue
		}
		s.importRow(ctx, report, row, record)
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"imported":   report.Imported,
			"skipped":    report.Skipped,
			"duplicates": len(report.Duplicates),
		})
		s.logg.Info(logCtx, "import.completed")
	}

	return report, nil
}

func (s *Service) importRow(ctx context.Context, report *Report, row int, record []string) {
	if len(record) < expectedColumns {
		report.skip(row, "expected 4 columns")
		return
	}

	code := strings.TrimSpace(record[0])
	name := strings.TrimSpace(record[1])
	if code == "" || name == "" {
		report.skip(row, "code and name are required")
		return
	}

	priceCents, err := parsePriceCents(record[2])
	if err != nil {
		report.skip(row, err.Error())
		return
	}

	stock, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil || stock < 0 {
		report.skip(row, "stock must be a non-negative integer")
		return
	}

	_, err = s.products.CreateProduct(ctx, products.CreateProductInput{
		Code:          code,
		Name:          name,
		PriceCents:    priceCents,
		StockQuantity: stock,
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			switch typed.Code() {
			case pkgerrors.CodeConflict:
				report.Skipped++
				report.Duplicates = append(report.Duplicates, code)
				return
			case pkgerrors.CodeValidation:
				report.skip(row, typed.Message())
				return
			}
		}
		report.skip(row, "could not persist row")
		return
	}
	report.Imported++
}

func (r *Report) skip(row int, reason string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Row: row, Reason: reason})
}

// parsePriceCents accepts decimal prices ("1500", "1500.50") and converts
// them to whole cents, rejecting negatives and sub-cent precision.
func parsePriceCents(raw string) (int64, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("price must be a number")
	}
	if value.IsNegative() {
		return 0, errors.New("price must not be negative")
	}
	cents := value.Mul(centsPerUnit)
	if !cents.IsInteger() {
		return 0, errors.New("price cannot have more than 2 decimal places")
	}
	return cents.IntPart(), nil
}
