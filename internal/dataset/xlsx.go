package dataset

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool { return hasExt(filename, ".xlsx", ".xlsm") }

// Load reads the first sheet of a workbook. Number cells become numeric
// values, booleans become "true"/"false", and everything else keeps its
// formatted text.
func (xlsxLoader) Load(r io.Reader) (Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in xlsx file")
	}
	sheet := sheets[0]
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	header, rest, headerIdx, ok := splitHeader(records)
	if !ok {
		return Dataset{}, nil
	}
	var cellErr error
	ds := fromRecords(header, rest, func(i, j int, formatted string) Value {
		// excelize coordinates are 1-based; data starts on the row after the header.
		axis, err := excelize.CoordinatesToCellName(j+1, headerIdx+i+2)
		if err != nil {
			if cellErr == nil {
				cellErr = err
			}
			return String(formatted)
		}
		v, err := xlsxCell(f, sheet, axis, formatted)
		if err != nil && cellErr == nil {
			cellErr = fmt.Errorf("cell %s: %w", axis, err)
		}
		return v
	})
	if cellErr != nil {
		return nil, cellErr
	}
	return ds, nil
}

func xlsxCell(f *excelize.File, sheet, axis, formatted string) (Value, error) {
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return String(formatted), err
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		if err != nil {
			return String(formatted), err
		}
		if x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return Number(x), nil
		}
		return String(formatted), nil
	case excelize.CellTypeBool:
		raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		if err != nil {
			return String(formatted), err
		}
		return String(strconv.FormatBool(raw == "1" || strings.EqualFold(raw, "true"))), nil
	default:
		return String(formatted), nil
	}
}
