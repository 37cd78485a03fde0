package curriculum

import (
	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/career"
	"github.com/akdemia/akdemia/modules/curriculum/domain/aggregates/subject"
	"github.com/akdemia/akdemia/modules/curriculum/infrastructure/persistence"
	"github.com/akdemia/akdemia/modules/curriculum/permissions"
	"github.com/akdemia/akdemia/modules/curriculum/presentation/controllers"
	"github.com/akdemia/akdemia/modules/curriculum/services"
	"github.com/akdemia/akdemia/pkg/application"
	"github.com/akdemia/akdemia/pkg/schema"
)

const (
	SubjectTarget = "curriculum.subject"
	CareerTarget  = "curriculum.career"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "curriculum"
}

func (m *Module) Register(app application.Application) error {
	subjectRepo := persistence.NewSubjectRepository()
	careerRepo := persistence.NewCareerRepository()

	app.RegisterServices(
		services.NewSubjectService(subjectRepo, app.EventPublisher()),
		services.NewCareerService(careerRepo, app.EventPublisher()),
	)
	app.RegisterControllers(controllers.NewCurriculumController(app))
	app.RegisterPermissions(permissions.All...)

	return registerImportTargets(app, subjectRepo, careerRepo)
}

// registerImportTargets declares which curriculum entities the bulk importer
// may write, and how their spreadsheet columns coerce.
func registerImportTargets(
	app application.Application,
	subjectRepo subject.Repository,
	careerRepo career.Repository,
) error {
	subjectStore := persistence.NewSubjectImportStore(subjectRepo, careerRepo)
	careerStore := persistence.NewCareerImportStore(careerRepo)

	subjectTarget, err := schema.NewTarget(SubjectTarget, []schema.FieldDescriptor{
		{Name: "code", Kind: schema.KindText, Required: true, Unique: true},
		{Name: "name", Kind: schema.KindText, Required: true},
		{Name: "credits", Kind: schema.KindDecimal, Precision: 2},
		{Name: "hours", Kind: schema.KindInteger},
		{Name: "status", Kind: schema.KindChoice, Choices: subject.Statuses},
		{Name: "career", Kind: schema.KindRelation, Relation: &schema.Relation{
			Target:       CareerTarget,
			LookupFields: []string{"code", "name"},
		}},
	}, subjectStore, schema.WithMergeHook(subjectStore.MergeDuplicate))
	if err != nil {
		return err
	}

	careerTarget, err := schema.NewTarget(CareerTarget, []schema.FieldDescriptor{
		{Name: "code", Kind: schema.KindText, Required: true, Unique: true},
		{Name: "name", Kind: schema.KindText, Required: true},
	}, careerStore)
	if err != nil {
		return err
	}

	return app.ImportTargets().Register(subjectTarget, careerTarget)
}
