package labeldb

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"

	"github.com/labelforge/labelforge/pkg/anno"
)

func createTestDB(t *testing.T) *LabelDB {
	os.Remove("test-labeldb.sqlite")
	db, err := NewLabelDB(logs.NewTestingLog(t), "test-labeldb.sqlite")
	require.NoError(t, err)
	return db
}

func testInterface() anno.Interface {
	return anno.Interface{
		Jobs: map[string]anno.JobInterface{
			"CLASSIFY_JOB": {
				Content: anno.JobContent{
					Categories: map[string]anno.CategoryDef{
						"A": {Name: "A"},
						"B": {Name: "B"},
					},
				},
			},
		},
	}
}

func TestProjectRoundTrip(t *testing.T) {
	db := createTestDB(t)

	created, err := db.CreateProject("demo", anno.InputTypeVideo, testInterface())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := db.GetProject(created.ID)
	require.NoError(t, err)
	require.Equal(t, "demo", fetched.Name)
	require.Equal(t, anno.InputTypeVideo, fetched.InputType)
	require.Contains(t, fetched.Interface.Data.Jobs, "CLASSIFY_JOB")

	_, err = db.GetProject("no-such-project")
	require.Error(t, err)
}

func TestAnnotationReplace(t *testing.T) {
	db := createTestDB(t)

	project, err := db.CreateProject("demo", anno.InputTypeVideo, testInterface())
	require.NoError(t, err)
	label, err := db.CreateLabel(project.ID, "asset-1")
	require.NoError(t, err)

	annotations := []anno.Annotation{
		{ID: "a1", Job: "CLASSIFY_JOB", Kind: anno.KindClassification},
		{Job: "CLASSIFY_JOB", Kind: anno.KindTranscription, Text: "hello"},
		{ID: "a3", Job: "CLASSIFY_JOB", Kind: anno.KindClassification},
	}
	require.NoError(t, db.ReplaceAnnotations(label.ID, annotations))

	stored, err := db.AnnotationsForLabel(label.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	// Insertion order survives, and the blank ID was filled in.
	require.Equal(t, "a1", stored[0].ID)
	require.NotEmpty(t, stored[1].ID)
	require.Equal(t, "hello", stored[1].Text)
	require.Equal(t, "a3", stored[2].ID)

	// Replacing drops the old set entirely.
	require.NoError(t, db.ReplaceAnnotations(label.ID, annotations[:1]))
	stored, err = db.AnnotationsForLabel(label.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestSetResponse(t *testing.T) {
	db := createTestDB(t)

	project, err := db.CreateProject("demo", "", testInterface())
	require.NoError(t, err)
	label, err := db.CreateLabel(project.ID, "asset-1")
	require.NoError(t, err)
	require.Nil(t, label.Response)

	response := json.RawMessage(`{"CLASSIFY_JOB":{"categories":[{"name":"A"}]}}`)
	require.NoError(t, db.SetResponse(label.ID, response))

	fetched, err := db.GetLabel(label.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Response)
	require.JSONEq(t, string(response), string(fetched.Response.Data))
}
