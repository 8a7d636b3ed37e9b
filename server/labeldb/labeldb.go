// Package labeldb stores projects, labels, and their flat annotation records.
package labeldb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labelforge/labelforge/pkg/anno"
	"github.com/labelforge/labelforge/pkg/dbh"
)

type LabelDB struct {
	Log logs.Log
	DB  *gorm.DB
}

func NewLabelDB(logger logs.Log, dbFilename string) (*LabelDB, error) {
	os.MkdirAll(filepath.Dir(dbFilename), 0777)
	labelDB, err := dbh.OpenDB(logger, dbh.MakeSqliteConfig(dbFilename), Migrations(logger), 0)
	if err != nil {
		return nil, fmt.Errorf("Failed to open database %v: %w", dbFilename, err)
	}
	return &LabelDB{
		Log: logger,
		DB:  labelDB,
	}, nil
}

func (d *LabelDB) CreateProject(name, inputType string, iface anno.Interface) (*Project, error) {
	project := &Project{
		ID:        uuid.NewString(),
		Name:      name,
		InputType: inputType,
		Interface: dbh.MakeJSONField(iface),
		CreatedAt: dbh.MakeIntTime(time.Now()),
	}
	if err := d.DB.Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (d *LabelDB) GetProject(id string) (*Project, error) {
	project := Project{}
	if err := d.DB.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (d *LabelDB) CreateLabel(projectID, assetID string) (*Label, error) {
	label := &Label{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		AssetID:   assetID,
		CreatedAt: dbh.MakeIntTime(time.Now()),
	}
	if err := d.DB.Create(label).Error; err != nil {
		return nil, err
	}
	return label, nil
}

func (d *LabelDB) GetLabel(id string) (*Label, error) {
	label := Label{}
	if err := d.DB.First(&label, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// ReplaceAnnotations replaces the entire annotation set of a label.
// Records with a blank ID are assigned one.
func (d *LabelDB) ReplaceAnnotations(labelID string, annotations []anno.Annotation) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", labelID).Delete(&AnnotationRecord{}).Error; err != nil {
			return err
		}
		for i := range annotations {
			a := annotations[i]
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			rec := AnnotationRecord{
				LabelID: labelID,
				ID:      a.ID,
				Seq:     i,
				Record:  dbh.MakeJSONField(a),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AnnotationsForLabel returns the label's annotations in insertion order.
func (d *LabelDB) AnnotationsForLabel(labelID string) ([]anno.Annotation, error) {
	recs := []AnnotationRecord{}
	if err := d.DB.Where("label_id = ?", labelID).Order("seq").Find(&recs).Error; err != nil {
		return nil, err
	}
	annotations := make([]anno.Annotation, 0, len(recs))
	for _, rec := range recs {
		annotations = append(annotations, rec.Record.Data)
	}
	return annotations, nil
}

func (d *LabelDB) SetResponse(labelID string, response json.RawMessage) error {
	return d.DB.Model(&Label{}).Where("id = ?", labelID).Update("response", dbh.MakeJSONField(response)).Error
}
