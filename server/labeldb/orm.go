package labeldb

import (
	"encoding/json"

	"github.com/labelforge/labelforge/pkg/anno"
	"github.com/labelforge/labelforge/pkg/dbh"
)

// A labeling project: declares its jobs (the json interface) and whether
// assets are videos or classic documents.
type Project struct {
	ID        string                         `gorm:"primaryKey" json:"id"`
	Name      string                         `json:"name"`
	InputType string                         `json:"inputType"` // "VIDEO" or classic
	Interface *dbh.JSONField[anno.Interface] `json:"interface"`
	CreatedAt dbh.IntTime                    `json:"createdAt"`
}

// One labeled asset. Response is the label's json response, rebuilt from the
// flat annotation records on demand (nil until the first conversion, or when
// carrying autosaved data written by a client).
type Label struct {
	ID        string                          `gorm:"primaryKey" json:"id"`
	ProjectID string                          `gorm:"index" json:"projectId"`
	AssetID   string                          `json:"assetId"`
	Response  *dbh.JSONField[json.RawMessage] `json:"response,omitempty"`
	CreatedAt dbh.IntTime                     `json:"createdAt"`
}

// One flat annotation record of a label. Seq preserves insertion order, which
// is the order the conversion engine sees.
type AnnotationRecord struct {
	LabelID string                          `gorm:"primaryKey;autoIncrement:false" json:"labelId"`
	ID      string                          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Seq     int                             `json:"seq"`
	Record  *dbh.JSONField[anno.Annotation] `json:"record"`
}
