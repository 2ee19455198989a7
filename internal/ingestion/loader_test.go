package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustProfile(t *testing.T, dataset domain.Dataset) Profile {
	t.Helper()
	profile, err := ProfileFor(dataset)
	require.NoError(t, err)
	return profile
}

func TestProfileForUnknownDataset(t *testing.T) {
	_, err := ProfileFor(domain.Dataset("eicu"))
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestLoadDiagnosesMimicIII(t *testing.T) {
	// Uppercase headers, ICD-9 codes.
	path := writeCSV(t, "diagnoses.csv", `SUBJECT_ID,HADM_ID,SEQ_NUM,ICD9_CODE
10,100,1,43491
10,100,2,4019
11,101,1,25000
`)

	table, err := LoadDiagnoses(path, mustProfile(t, domain.MIMICIII), testLogger())
	require.NoError(t, err)

	require.Len(t, table.Rows, 3)
	assert.True(t, table.HasSeqNum)
	assert.Equal(t, int64(100), table.Rows[0].AdmissionID)
	assert.Equal(t, "43491", table.Rows[0].DiagnosisCode)
	assert.Equal(t, domain.ICD9, table.Rows[0].CodeSystem)
	require.NotNil(t, table.Rows[0].SeqNum)
	assert.Equal(t, 1, *table.Rows[0].SeqNum)
}

func TestLoadDiagnosesMimicIVPerRowVersion(t *testing.T) {
	path := writeCSV(t, "diagnoses.csv", `subject_id,hadm_id,seq_num,icd_code,icd_version
10,100,1,I634,10
10,100,2,43491,9
`)

	table, err := LoadDiagnoses(path, mustProfile(t, domain.MIMICIV), testLogger())
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, domain.ICD10, table.Rows[0].CodeSystem)
	assert.Equal(t, domain.ICD9, table.Rows[1].CodeSystem)
}

func TestLoadDiagnosesWithoutSeqColumn(t *testing.T) {
	path := writeCSV(t, "diagnoses.csv", `subject_id,hadm_id,icd_code,icd_version
10,100,I634,10
`)

	table, err := LoadDiagnoses(path, mustProfile(t, domain.MIMICIV), testLogger())
	require.NoError(t, err)
	assert.False(t, table.HasSeqNum)
	assert.Nil(t, table.Rows[0].SeqNum)
}

func TestLoadDiagnosesMissingColumns(t *testing.T) {
	path := writeCSV(t, "diagnoses.csv", `subject_id,icd_code
10,I634
`)

	_, err := LoadDiagnoses(path, mustProfile(t, domain.MIMICIV), testLogger())
	var missing *domain.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Columns, "hadm_id")
}

func TestLoadDiagnosesNullAdmissionID(t *testing.T) {
	path := writeCSV(t, "diagnoses.csv", `subject_id,hadm_id,icd_code,icd_version
10,,I634,10
`)

	_, err := LoadDiagnoses(path, mustProfile(t, domain.MIMICIV), testLogger())
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "hadm_id", validation.Field)
}

func TestLoadDiagnosesNonIntegerSeqNum(t *testing.T) {
	path := writeCSV(t, "diagnoses.csv", `subject_id,hadm_id,seq_num,icd_code,icd_version
10,100,first,I634,10
`)

	_, err := LoadDiagnoses(path, mustProfile(t, domain.MIMICIV), testLogger())
	var violation *domain.SchemaViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "diagnoses", violation.Table)
	assert.Equal(t, "seq_num", violation.Column)
}

func TestLoadAdmissions(t *testing.T) {
	path := writeCSV(t, "admissions.csv", `subject_id,hadm_id,admission_type,admittime,dischtime,age_at_admission
10,100,EMERGENCY,2180-03-01 10:00:00,2180-03-04 10:00:00,71.5
11,101,ELECTIVE,2181-05-02 08:00:00,2181-05-02 20:00:00,
`)

	table, err := LoadAdmissions(path, mustProfile(t, domain.MIMICIV), testLogger())
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.True(t, table.HasAge)

	first := table.Rows[0]
	require.NotNil(t, first.AgeAtAdmission)
	assert.Equal(t, 71.5, *first.AgeAtAdmission)
	require.NotNil(t, first.LengthOfStayDays)
	assert.InDelta(t, 3.0, *first.LengthOfStayDays, 1e-9)

	// Null age on a row that has the column stays nil.
	assert.Nil(t, table.Rows[1].AgeAtAdmission)
	require.NotNil(t, table.Rows[1].LengthOfStayDays)
	assert.InDelta(t, 0.5, *table.Rows[1].LengthOfStayDays, 1e-9)
}

func TestLoadAdmissionsWithoutAgeColumn(t *testing.T) {
	path := writeCSV(t, "admissions.csv", `subject_id,hadm_id,admission_type
10,100,EMERGENCY
`)

	table, err := LoadAdmissions(path, mustProfile(t, domain.MIMICIV), testLogger())
	require.NoError(t, err)
	assert.False(t, table.HasAge)
	assert.Nil(t, table.Rows[0].LengthOfStayDays)
}

func TestLoadAdmissionsNonNumericAge(t *testing.T) {
	path := writeCSV(t, "admissions.csv", `subject_id,hadm_id,admission_type,age_at_admission
10,100,EMERGENCY,seventy
`)

	_, err := LoadAdmissions(path, mustProfile(t, domain.MIMICIV), testLogger())
	var violation *domain.SchemaViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "admissions", violation.Table)
	assert.Equal(t, "age_at_admission", violation.Column)
}

func TestLoadAdmissionsDuplicateAdmission(t *testing.T) {
	path := writeCSV(t, "admissions.csv", `subject_id,hadm_id,admission_type
10,100,EMERGENCY
10,100,ELECTIVE
`)

	_, err := LoadAdmissions(path, mustProfile(t, domain.MIMICIV), testLogger())
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "hadm_id", validation.Field)
}

func TestLoadPatientsAndAttachAges(t *testing.T) {
	patientsPath := writeCSV(t, "patients.csv", `subject_id,gender,anchor_age
10,F,70
11,M,
`)
	admissionsPath := writeCSV(t, "admissions.csv", `subject_id,hadm_id,admission_type
10,100,EMERGENCY
11,101,ELECTIVE
12,102,EMERGENCY
`)

	profile := mustProfile(t, domain.MIMICIV)
	patients, err := LoadPatients(patientsPath, profile, testLogger())
	require.NoError(t, err)
	require.Len(t, patients, 2)
	require.NotNil(t, patients[0].AnchorAge)
	assert.Equal(t, 70.0, *patients[0].AnchorAge)
	assert.Nil(t, patients[1].AnchorAge)

	admissions, err := LoadAdmissions(admissionsPath, profile, testLogger())
	require.NoError(t, err)

	attached := AttachAnchorAges(admissions, patients, testLogger())
	assert.True(t, attached.HasAge)
	require.NotNil(t, attached.Rows[0].AgeAtAdmission)
	assert.Equal(t, 70.0, *attached.Rows[0].AgeAtAdmission)
	assert.Nil(t, attached.Rows[1].AgeAtAdmission)
	assert.Nil(t, attached.Rows[2].AgeAtAdmission)

	// Source table is untouched.
	assert.False(t, admissions.HasAge)
	assert.Nil(t, admissions.Rows[0].AgeAtAdmission)
}

func TestAttachAnchorAgesKeepsExistingAgeColumn(t *testing.T) {
	age := 50.0
	admissions := &domain.AdmissionTable{
		Rows:   []domain.AdmissionRecord{{SubjectID: 10, AdmissionID: 100, AgeAtAdmission: &age}},
		HasAge: true,
	}
	anchor := 70.0
	patients := []domain.PatientRecord{{SubjectID: 10, AnchorAge: &anchor}}

	attached := AttachAnchorAges(admissions, patients, testLogger())
	assert.Equal(t, 50.0, *attached.Rows[0].AgeAtAdmission)
}
