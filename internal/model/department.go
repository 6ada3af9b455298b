package model

type Department struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	Doctors           []DoctorProfile    `gorm:"foreignKey:DepartmentID" json:"doctors,omitempty"`
	PreVisitQuestions []PreVisitQuestion `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE" json:"pre_visit_questions,omitempty"`
}

// PreVisitQuestion is an intake question shown to patients booking into a
// department. Questions do not survive their department.
type PreVisitQuestion struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	DepartmentID uint   `gorm:"not null;index" json:"department_id"`
	QuestionText string `gorm:"type:text;not null" json:"question_text"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
