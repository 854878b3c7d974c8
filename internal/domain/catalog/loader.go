package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/orderflow/intake/internal/extraction/similarity"
	"github.com/orderflow/intake/pkg/errors"
)

// Required catalog columns.  Header matching is case-insensitive and tolerant
// of surrounding whitespace, but every required column must be present.
const (
	ColumnName  = "Product_Name"
	ColumnCode  = "Product_Code"
	ColumnMOQ   = "Min_Order_Quantity"
	ColumnStock = "Available_in_Stock"
	ColumnPrice = "Price"

	// ColumnCategory is optional.
	ColumnCategory = "Category"
)

var requiredColumns = []string{ColumnName, ColumnCode, ColumnMOQ, ColumnStock, ColumnPrice}

// Load reads the CSV catalog at path and returns a ready Index.  A missing or
// unreadable file, a missing required column, or an unparsable row is fatal:
// the catalog is the one dependency the pipeline cannot degrade without.
func Load(path string, scorer similarity.Scorer, matchCutoff float64) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCatalogLoadFailed, "failed to open catalog file").WithDetail("path=" + path)
	}
	defer f.Close()

	return Parse(f, scorer, matchCutoff)
}

// Parse reads CSV catalog data from r and returns a ready Index.
func Parse(r io.Reader, scorer similarity.Scorer, matchCutoff float64) (*Index, error) {
	products, err := parseRows(r)
	if err != nil {
		return nil, err
	}
	return NewIndex(products, scorer, matchCutoff), nil
}

func parseRows(r io.Reader) ([]Product, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeCatalogEmpty, "catalog source is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCatalogLoadFailed, "failed to read catalog header")
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[strings.ToLower(required)]; !ok {
			return nil, errors.Newf(errors.ErrCodeCatalogColumnMissing, "catalog is missing required column %q", required)
		}
	}

	nameIdx := cols[strings.ToLower(ColumnName)]
	codeIdx := cols[strings.ToLower(ColumnCode)]
	moqIdx := cols[strings.ToLower(ColumnMOQ)]
	stockIdx := cols[strings.ToLower(ColumnStock)]
	priceIdx := cols[strings.ToLower(ColumnPrice)]
	categoryIdx, hasCategory := cols[strings.ToLower(ColumnCategory)]

	var products []Product
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCatalogRowInvalid, "failed to read catalog row").WithDetail("line=" + strconv.Itoa(line))
		}

		p := Product{
			Name: strings.TrimSpace(record[nameIdx]),
			Code: strings.TrimSpace(record[codeIdx]),
		}
		if p.Name == "" || p.Code == "" {
			return nil, errors.Newf(errors.ErrCodeCatalogRowInvalid, "catalog row %d has an empty name or code", line)
		}

		if p.MinOrderQuantity, err = parseNonNegativeInt(record[moqIdx]); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCatalogRowInvalid, "invalid minimum order quantity").WithDetail("line=" + strconv.Itoa(line))
		}
		if p.Stock, err = parseNonNegativeInt(record[stockIdx]); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCatalogRowInvalid, "invalid stock value").WithDetail("line=" + strconv.Itoa(line))
		}
		if p.Price, err = parseNonNegativeFloat(record[priceIdx]); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCatalogRowInvalid, "invalid price value").WithDetail("line=" + strconv.Itoa(line))
		}
		if hasCategory && categoryIdx < len(record) {
			p.Category = strings.TrimSpace(record[categoryIdx])
		}

		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, errors.New(errors.ErrCodeCatalogEmpty, "catalog contains no products")
	}
	return products, nil
}

func parseNonNegativeInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.Newf(errors.ErrCodeCatalogRowInvalid, "value %d is negative", v)
	}
	return v, nil
}

func parseNonNegativeFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.Newf(errors.ErrCodeCatalogRowInvalid, "value %v is negative", v)
	}
	return v, nil
}
