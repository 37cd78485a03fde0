package permissions

const (
	ResourceSubject = "subject"
	ResourceCareer  = "career"
)

const (
	SubjectRead   = "subject.read"
	SubjectCreate = "subject.create"
	SubjectUpdate = "subject.update"
	SubjectDelete = "subject.delete"
	CareerRead    = "career.read"
	CareerCreate  = "career.create"
	CareerUpdate  = "career.update"
	CareerDelete  = "career.delete"
)

var All = []string{
	SubjectRead,
	SubjectCreate,
	SubjectUpdate,
	SubjectDelete,
	CareerRead,
	CareerCreate,
	CareerUpdate,
	CareerDelete,
}
