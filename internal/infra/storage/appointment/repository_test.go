package appointment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestDoctorFilterQuery_SingleDayInTx(t *testing.T) {
	day := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := doctorFilterQuery(domain.DoctorAppointmentsFilter{
		DoctorID:  7,
		StartDate: &day,
		EndDate:   &day,
	}, true).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "doctor_id = $1")
	assert.Contains(t, query, "appointment_date >= $2")
	assert.Contains(t, query, "appointment_date <= $3")
	assert.Contains(t, query, "status NOT IN ($4,$5,$6,$7)")
	assert.Contains(t, query, "ORDER BY starts_at ASC")
	assert.True(t, strings.HasSuffix(query, "FOR UPDATE"))
	assert.Equal(t, int64(7), args[0])
	assert.Len(t, args, 7)
}

func TestDoctorFilterQuery_NoLockOutsideTx(t *testing.T) {
	day := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	query, _, err := doctorFilterQuery(domain.DoctorAppointmentsFilter{
		DoctorID:  7,
		StartDate: &day,
		EndDate:   &day,
	}, false).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, query, "FOR UPDATE")
}

func TestDoctorFilterQuery_RangeWithStatus(t *testing.T) {
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC)
	status := domain.StatusCancelled

	query, args, err := doctorFilterQuery(domain.DoctorAppointmentsFilter{
		DoctorID:  7,
		StartDate: &start,
		EndDate:   &end,
		Status:    &status,
	}, true).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "status = $4")
	assert.NotContains(t, query, "NOT IN")
	assert.Contains(t, query, "ORDER BY starts_at DESC")
	assert.NotContains(t, query, "FOR UPDATE", "ranges are never locked")
	assert.Equal(t, domain.StatusCancelled, args[3])
}

func TestDoctorFilterQuery_IncludeInactive(t *testing.T) {
	query, args, err := doctorFilterQuery(domain.DoctorAppointmentsFilter{DoctorID: 3, IncludeInactive: true}, false).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, query, "status NOT IN")
	assert.NotContains(t, query, "status =")
	assert.Len(t, args, 1)
}
