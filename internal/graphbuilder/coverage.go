package graphbuilder

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

// corberturaReport mirrors the subset of the Cobertura XML schema this
// project reads: a <coverage> root carrying report-wide line and branch
// rates, plus per-class line rates and line counts over
// <class filename="..."> entries.
type corberturaReport struct {
	XMLName    xml.Name `xml:"coverage"`
	Timestamp  string   `xml:"timestamp,attr"`
	LineRate   string   `xml:"line-rate,attr"`
	BranchRate string   `xml:"branch-rate,attr"`
	Packages   []struct {
		Classes []struct {
			Filename     string `xml:"filename,attr"`
			LineRate     string `xml:"line-rate,attr"`
			LinesCovered string `xml:"lines-covered,attr"`
			LinesValid   string `xml:"lines-valid,attr"`
		} `xml:"classes>class"`
	} `xml:"packages>package"`
}

// IngestCobertura reads a Cobertura XML coverage report and produces a
// coverage_report entity plus covers/executed_by edges linking it to the
// module entities it exercised, resolved against the already-built
// project symbol index so a report can be ingested after or alongside a
// normal analyze pass.
func IngestCobertura(xmlPath string, projectEntities []model.Entity) ([]model.Entity, []model.Relationship, error) {
	data, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, nil, fmt.Errorf("coverage file not found: %w", err)
	}

	var report corberturaReport
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, nil, fmt.Errorf("invalid cobertura xml: %w", err)
	}

	idx := buildIndex(projectEntities)

	reportID := "coverage::" + filepath.Base(xmlPath)
	reportEntity := model.Entity{
		ID:            reportID,
		Kind:          model.KindCoverageReport,
		Name:          fmt.Sprintf("Coverage Report (%s)", filepath.Base(xmlPath)),
		QualifiedName: filepath.Base(xmlPath),
		Location:      model.Location{FilePath: xmlPath},
		Attributes: model.Attrs{
			"timestamp":   model.StringAttr(report.Timestamp),
			"line-rate":   model.StringAttr(report.LineRate),
			"branch-rate": model.StringAttr(report.BranchRate),
		},
	}

	entities := []model.Entity{reportEntity}
	var relationships []model.Relationship

	for _, pkg := range report.Packages {
		for _, cls := range pkg.Classes {
			if cls.Filename == "" {
				continue
			}
			moduleName := strings.TrimSuffix(filepath.Base(cls.Filename), filepath.Ext(cls.Filename))
			mod, ok := idx.byModuleName[moduleName]
			if !ok {
				// No matching module in this analysis; the report may
				// cover files outside the scanned tree. Skip rather than
				// invent a dangling edge.
				continue
			}

			relationships = append(relationships,
				model.Relationship{
					SourceID: reportID,
					TargetID: mod.ID,
					Kind:     model.RelCovers,
					Attributes: model.Attrs{
						"line-rate": model.StringAttr(cls.LineRate),
						"hits":      model.StringAttr(cls.LinesCovered + "/" + cls.LinesValid),
					},
				},
				model.Relationship{SourceID: mod.ID, TargetID: reportID, Kind: model.RelExecutedBy},
			)
		}
	}

	return entities, relationships, nil
}
