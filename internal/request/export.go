package request

import (
	"context"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var exportHeaders = []string{
	"Demandeur", "E-mail", "Entité", "Lieu",
	"Du", "Au", "Début", "Fin", "Jours",
	"Type", "Responsable", "Service RH", "Statut", "Motif", "Créée le",
}

var statusLabels = map[string]string{
	StatusPending:   "En attente",
	StatusSent:      "Validée",
	StatusRefused:   "Refusée",
	StatusCancelled: "Annulée",
}

// Export renders the filtered request list as an XLSX workbook.
func (s *service) Export(ctx context.Context, f ListFilter) ([]byte, error) {
	requests, err := s.repo.FindAll(ctx, f)
	if err != nil {
		s.logger.Error("export requests fetch failed", zap.Error(err))
		return nil, err
	}

	xf := excelize.NewFile()
	defer func() {
		if err := xf.Close(); err != nil {
			s.logger.Error("close export workbook failed", zap.Error(err))
		}
	}()

	sheet := "Sheet1"
	row, err := writeExportHeader(xf, sheet, 0)
	if err != nil {
		return nil, err
	}
	if len(requests) != 0 {
		if err := writeExportRows(xf, sheet, requests, row); err != nil {
			return nil, err
		}
	}
	xf.SetSheetName(sheet, "Demandes")

	buf, err := xf.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	s.logger.Info("export requests success", zap.Int("count", len(requests)))
	return buf.Bytes(), nil
}

func writeExportRows(f *excelize.File, sheet string, requests []DetachmentRequest, row int) error {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(exportHeaders), len(requests)+1); err != nil {
		return err
	}
	for _, item := range requests {
		row++
		values := []interface{}{
			item.ApplicantName,
			item.ApplicantEmail,
			item.Entity,
			item.Place,
			item.DateFrom.Format("02/01/2006"),
			item.DateTo.Format("02/01/2006"),
			periodLabel(item.StartPeriod),
			periodLabel(item.EndPeriod),
			item.Days,
			item.Type,
			item.ManagerEmail,
			item.HREmail,
			statusLabel(item.Status),
			strValue(item.DecisionReason),
			item.CreatedAt.Format("02/01/2006 15:04"),
		}
		for col, v := range values {
			if err := writeCell(f, sheet, col+1, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func periodLabel(p string) string {
	switch p {
	case PeriodAM:
		return "matin"
	case PeriodPM:
		return "après-midi"
	default:
		return "journée"
	}
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func writeCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func writeExportHeader(f *excelize.File, sheet string, row int) (int, error) {
	row++
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
	})
	if err != nil {
		return row, err
	}
	cellFirst, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return row, err
	}
	cellLast, err := excelize.CoordinatesToCellName(len(exportHeaders), row)
	if err != nil {
		return row, err
	}
	if err = f.SetCellStyle(sheet, cellFirst, cellLast, style); err != nil {
		return row, err
	}

	lastCol, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err != nil {
		return row, err
	}
	if err = f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return row, err
	}

	for idx, value := range exportHeaders {
		if err = writeCell(f, sheet, idx+1, row, value); err != nil {
			return row, err
		}
	}
	return row, nil
}

func applyDataCellStyle(f *excelize.File, sheet string, colFrom, rowFrom, colTo, rowTo int) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Size: 11,
		},
	})
	if err != nil {
		return err
	}
	cellFirst, err := excelize.CoordinatesToCellName(colFrom, rowFrom)
	if err != nil {
		return err
	}
	cellLast, err := excelize.CoordinatesToCellName(colTo, rowTo)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cellFirst, cellLast, style)
}
