package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"churchhelper/entity"
	"churchhelper/internal/lib/sl"
	"churchhelper/internal/lib/util"
)

var requiredCSVColumns = []string{"name", "type", "date"}

// ImportCSV ingests a celebrant roster. Rows are processed independently: a
// bad row is recorded and skipped, the rest of the file still imports. The
// returned warnings flag data-quality issues that did not block a row, such
// as a contact handle with an unrecognized country prefix.
func (c *Core) ImportCSV(filename string, r io.Reader) (*entity.CSVUpload, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredCSVColumns {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", required)
		}
	}

	upload := &entity.CSVUpload{Filename: filename}
	var rowErrors []string
	var warnings []string

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		upload.RecordsProcessed++

		celebrant, warning, err := parseCelebrantRow(row, columns)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if warning != "" {
			warnings = append(warnings, fmt.Sprintf("line %d: %s", line, warning))
		}

		added, err := c.repo.UpsertCelebrant(celebrant)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if added {
			upload.RecordsAdded++
		} else {
			upload.RecordsUpdated++
		}
	}

	upload.Success = len(rowErrors) == 0
	if len(rowErrors) > 0 {
		upload.ErrorMessage = strings.Join(rowErrors, "; ")
	}

	if err = c.repo.SaveCSVUpload(upload); err != nil {
		c.log.With(sl.Err(err)).Error("failed to record csv upload")
	}

	c.log.Info("csv import finished",
		slog.String("filename", filename),
		slog.Int("processed", upload.RecordsProcessed),
		slog.Int("added", upload.RecordsAdded),
		slog.Int("updated", upload.RecordsUpdated),
		slog.Int("errors", len(rowErrors)),
	)
	return upload, warnings, nil
}

func parseCelebrantRow(row []string, columns map[string]int) (*entity.Celebrant, string, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	name := field("name")
	if name == "" {
		return nil, "", fmt.Errorf("name is required")
	}

	eventType := entity.EventType(strings.ToLower(field("type")))
	if eventType != entity.EventBirthday && eventType != entity.EventAnniversary {
		return nil, "", fmt.Errorf("unknown event type %q", field("type"))
	}

	date := field("date")
	if err := entity.ValidateEventDate(date); err != nil {
		return nil, "", fmt.Errorf("invalid date %q, expected MM-DD", date)
	}

	celebrant := &entity.Celebrant{
		Name:      name,
		EventType: eventType,
		EventDate: date,
		Spouse:    field("spouse"),
		Active:    true,
	}

	if rawYear := field("year"); rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil {
			return nil, "", fmt.Errorf("invalid year %q", rawYear)
		}
		celebrant.Year = year
	}

	var warning string
	if phone := field("phone"); phone != "" {
		celebrant.ContactHandle = util.NormalizePhone(phone)
		if strings.HasPrefix(celebrant.ContactHandle, "+") && util.PhoneCountry(phone) == "" {
			warning = fmt.Sprintf("unrecognized country prefix in phone %q", phone)
		}
	}

	return celebrant, warning, nil
}
