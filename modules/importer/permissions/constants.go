package permissions

const (
	ResourceImport = "import"
)

const (
	ImportCreate = "import.create"
	ImportCommit = "import.commit"
	ImportCancel = "import.cancel"
)

// All lists every permission the importer module declares.
var All = []string{
	ImportCreate,
	ImportCommit,
	ImportCancel,
}
