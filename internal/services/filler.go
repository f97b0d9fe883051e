package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"SP-DOCS/internal/packs"
)

// TemplateFiller writes caller-supplied inputs into the cells declared
// by a pack mapping, producing a filled copy of the template workbook.
type TemplateFiller struct {
	log *logrus.Logger
}

func NewTemplateFiller(log *logrus.Logger) *TemplateFiller {
	return &TemplateFiller{log: log}
}

// Fill opens the template, writes inputs[key] (empty string when the key
// is absent) into every declared sheet/cell coordinate, and saves the
// result to outputPath. Exactly one output file is produced regardless
// of how many cells were written.
//
// Mappings naming a sheet absent from the template are skipped, not
// failed. Templates are maintained by hand and packs are shared across
// template revisions, so a partially-matching template is expected; the
// skip is logged at debug level so drift between pack definitions and
// templates stays detectable.
func (f *TemplateFiller) Fill(templatePath string, cells []packs.InputCell, inputs map[string]string, outputPath string) error {
	wb, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to open template %s: %w", templatePath, err)
	}
	defer wb.Close()

	sheets := make(map[string]bool)
	for _, name := range wb.GetSheetList() {
		sheets[name] = true
	}

	for _, c := range cells {
		if !sheets[c.Sheet] {
			f.log.WithFields(logrus.Fields{
				"module":   "filler",
				"template": templatePath,
				"sheet":    c.Sheet,
				"cell":     c.Cell,
				"key":      c.Key,
			}).Debug("mapped sheet missing from template, skipping cell")
			continue
		}
		if err := wb.SetCellValue(c.Sheet, c.Cell, inputs[c.Key]); err != nil {
			return fmt.Errorf("failed to write cell %s!%s: %w", c.Sheet, c.Cell, err)
		}
	}

	if err := wb.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save filled workbook: %w", err)
	}
	return nil
}
