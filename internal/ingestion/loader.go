package ingestion

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// mimicTimeLayout is the timestamp layout used by the raw extracts.
const mimicTimeLayout = "2006-01-02 15:04:05"

// header maps normalized column names to their position in the CSV.
type header map[string]int

func (h header) require(table string, columns ...string) error {
	missing := make([]string, 0)
	for _, col := range columns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return domain.NewMissingColumnError(table, missing...)
	}
	return nil
}

// field returns the trimmed cell value, or "" when the column is absent.
func (h header) field(record []string, column string) string {
	idx, ok := h[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// readCSV reads a whole CSV file, normalizing the header row to
// lowercase. Extracts are modest; streaming is not needed.
func readCSV(path string) (header, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	raw, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	h := make(header, len(raw))
	for i, name := range raw {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return h, records, nil
}

func parseID(table, field, value string, line int) (int64, error) {
	if value == "" {
		return 0, domain.NewValidationError(field,
			fmt.Sprintf("null identifier in %s at line %d", table, line), value)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(field,
			fmt.Sprintf("non-integer identifier in %s at line %d", table, line), value)
	}
	return id, nil
}

// LoadDiagnoses loads the diagnosis-level extract. The ordering column
// is optional; its absence is recorded on the table, not faked per row.
func LoadDiagnoses(path string, profile Profile, logger *logrus.Logger) (*domain.DiagnosisTable, error) {
	h, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := h.require("diagnoses", "subject_id", "hadm_id", profile.DiagnosisCodeColumn); err != nil {
		return nil, err
	}

	table := &domain.DiagnosisTable{}
	_, table.HasSeqNum = h["seq_num"]

	for i, record := range records {
		line := i + 2

		subjectID, err := parseID("diagnoses", "subject_id", h.field(record, "subject_id"), line)
		if err != nil {
			return nil, err
		}
		admissionID, err := parseID("diagnoses", "hadm_id", h.field(record, "hadm_id"), line)
		if err != nil {
			return nil, err
		}

		row := domain.DiagnosisRecord{
			SubjectID:     subjectID,
			AdmissionID:   admissionID,
			DiagnosisCode: h.field(record, profile.DiagnosisCodeColumn),
			CodeSystem:    profile.CodeSystem,
		}

		if profile.CodeVersionColumn != "" {
			switch h.field(record, profile.CodeVersionColumn) {
			case "9":
				row.CodeSystem = domain.ICD9
			case "10":
				row.CodeSystem = domain.ICD10
			}
		}

		if table.HasSeqNum {
			if raw := h.field(record, "seq_num"); raw != "" {
				seq, err := strconv.Atoi(raw)
				if err != nil {
					return nil, domain.NewSchemaViolationError("diagnoses", "seq_num", "integer", raw)
				}
				row.SeqNum = &seq
			}
		}

		table.Rows = append(table.Rows, row)
	}

	logger.WithFields(logrus.Fields{
		"path":        path,
		"rows":        len(table.Rows),
		"has_seq_num": table.HasSeqNum,
	}).Info("Loaded diagnosis extract")

	return table, nil
}

// LoadAdmissions loads the admission-level extract. One row per
// admission; a duplicate hadm_id is a hard error. Length of stay is
// derived from admit and discharge timestamps when both parse.
func LoadAdmissions(path string, profile Profile, logger *logrus.Logger) (*domain.AdmissionTable, error) {
	h, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := h.require("admissions", "subject_id", "hadm_id", "admission_type"); err != nil {
		return nil, err
	}

	table := &domain.AdmissionTable{}
	_, table.HasAge = h["age_at_admission"]
	seen := make(map[int64]bool, len(records))

	for i, record := range records {
		line := i + 2

		subjectID, err := parseID("admissions", "subject_id", h.field(record, "subject_id"), line)
		if err != nil {
			return nil, err
		}
		admissionID, err := parseID("admissions", "hadm_id", h.field(record, "hadm_id"), line)
		if err != nil {
			return nil, err
		}
		if seen[admissionID] {
			return nil, domain.NewValidationError("hadm_id",
				fmt.Sprintf("duplicate admission id in admissions at line %d", line), admissionID)
		}
		seen[admissionID] = true

		row := domain.AdmissionRecord{
			SubjectID:     subjectID,
			AdmissionID:   admissionID,
			AdmissionType: h.field(record, "admission_type"),
		}

		if table.HasAge {
			if raw := h.field(record, "age_at_admission"); raw != "" {
				age, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, domain.NewSchemaViolationError("admissions", "age_at_admission", "numeric", raw)
				}
				row.AgeAtAdmission = &age
			}
		}

		row.LengthOfStayDays = lengthOfStay(
			h.field(record, "admittime"), h.field(record, "dischtime"))

		table.Rows = append(table.Rows, row)
	}

	logger.WithFields(logrus.Fields{
		"path":    path,
		"rows":    len(table.Rows),
		"has_age": table.HasAge,
	}).Info("Loaded admission extract")

	return table, nil
}

// lengthOfStay derives the stay duration in days, nil when either
// timestamp is missing or malformed. Negative stays are kept as-is;
// downstream consumers treat them as data-quality signals.
func lengthOfStay(admit, discharge string) *float64 {
	if admit == "" || discharge == "" {
		return nil
	}
	admitTime, err := time.Parse(mimicTimeLayout, admit)
	if err != nil {
		return nil
	}
	dischargeTime, err := time.Parse(mimicTimeLayout, discharge)
	if err != nil {
		return nil
	}
	days := dischargeTime.Sub(admitTime).Hours() / 24.0
	return &days
}

// LoadPatients loads the patient-level demographics extract.
func LoadPatients(path string, profile Profile, logger *logrus.Logger) ([]domain.PatientRecord, error) {
	h, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := h.require("patients", "subject_id"); err != nil {
		return nil, err
	}

	patients := make([]domain.PatientRecord, 0, len(records))
	for i, record := range records {
		subjectID, err := parseID("patients", "subject_id", h.field(record, "subject_id"), i+2)
		if err != nil {
			return nil, err
		}

		row := domain.PatientRecord{
			SubjectID: subjectID,
			Gender:    h.field(record, "gender"),
		}
		if raw := h.field(record, profile.AnchorAgeColumn); raw != "" {
			if age, err := strconv.ParseFloat(raw, 64); err == nil {
				row.AnchorAge = &age
			}
		}

		patients = append(patients, row)
	}

	logger.WithFields(logrus.Fields{
		"path": path,
		"rows": len(patients),
	}).Info("Loaded patient extract")

	return patients, nil
}

// AttachAnchorAges fills admission ages from patient-level anchor ages
// when the admission extract carries no age column of its own. The
// returned table has HasAge set when at least one patient supplied an
// age; rows without a matching patient keep a nil age.
func AttachAnchorAges(admissions *domain.AdmissionTable, patients []domain.PatientRecord, logger *logrus.Logger) *domain.AdmissionTable {
	if admissions.HasAge {
		return admissions
	}

	ages := make(map[int64]*float64, len(patients))
	anyAge := false
	for _, p := range patients {
		if p.AnchorAge != nil {
			ages[p.SubjectID] = p.AnchorAge
			anyAge = true
		}
	}
	if !anyAge {
		return admissions
	}

	out := &domain.AdmissionTable{
		Rows:   make([]domain.AdmissionRecord, len(admissions.Rows)),
		HasAge: true,
	}
	filled := 0
	for i, row := range admissions.Rows {
		out.Rows[i] = row
		if age, ok := ages[row.SubjectID]; ok {
			v := *age
			out.Rows[i].AgeAtAdmission = &v
			filled++
		}
	}

	logger.WithFields(logrus.Fields{
		"admissions": len(out.Rows),
		"with_age":   filled,
	}).Info("Attached patient-level ages to admissions")

	return out
}
