// Package export формирует выгрузки журнала решений.
package export

import (
	"fmt"
	"sort"
	"time"

	"leasing_hub/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	logSheet     = "Decision log"
	summarySheet = "Summary"
	timeLayout   = "2006-01-02 15:04:05"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// DecisionLogXLSX строит книгу с журналом решений и сводкой по правилам.
func (g *Generator) DecisionLogXLSX(entries []domain.DecisionLogEntry, generatedAt time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", logSheet)
	if err := g.writeLog(file, entries); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("export: new sheet: %w", err)
	}
	g.writeSummary(file, entries, generatedAt)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeLog(file *excelize.File, entries []domain.DecisionLogEntry) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(logSheet, cell, value)
	}

	headers := []string{
		"Executed at",
		"Rule",
		"Entity type",
		"Entity ID",
		"Action",
		"Result",
		"Execution time, ms",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: style: %w", err)
	}
	_ = file.SetRowStyle(logSheet, 1, 1, style)

	for i, e := range entries {
		row := i + 2
		set(fmt.Sprintf("A%d", row), e.ExecutedAt.UTC().Format(timeLayout))
		set(fmt.Sprintf("B%d", row), e.RuleName)
		set(fmt.Sprintf("C%d", row), e.EntityType)
		set(fmt.Sprintf("D%d", row), e.EntityID.String())
		set(fmt.Sprintf("E%d", row), e.ActionTaken)
		set(fmt.Sprintf("F%d", row), e.Result)
		set(fmt.Sprintf("G%d", row), e.ExecutionTimeMs)
	}

	_ = file.SetColWidth(logSheet, "A", "A", 20)
	_ = file.SetColWidth(logSheet, "B", "C", 24)
	_ = file.SetColWidth(logSheet, "D", "D", 38)
	_ = file.SetColWidth(logSheet, "E", "F", 45)
	_ = file.SetColWidth(logSheet, "G", "G", 18)
	return nil
}

func (g *Generator) writeSummary(file *excelize.File, entries []domain.DecisionLogEntry, generatedAt time.Time) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	byRule := map[string]int{}
	for _, e := range entries {
		byRule[e.RuleName]++
	}
	rules := make([]string, 0, len(byRule))
	for r := range byRule {
		rules = append(rules, r)
	}
	sort.Strings(rules)

	set("A1", "Generated at")
	set("B1", generatedAt.UTC().Format(timeLayout))
	set("A2", "Entries")
	set("B2", len(entries))

	set("A4", "Rule")
	set("B4", "Actions")
	for i, r := range rules {
		row := 5 + i
		set(fmt.Sprintf("A%d", row), r)
		set(fmt.Sprintf("B%d", row), byRule[r])
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 28)
	_ = file.SetColWidth(summarySheet, "B", "B", 20)
}
