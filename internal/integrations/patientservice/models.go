package patientservice

// Patient модель пациента из PatientService
type Patient struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	FullName  string  `json:"full_name"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	IsBlocked bool    `json:"is_blocked"`
}
