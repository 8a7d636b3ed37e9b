package server

import (
	"github.com/cyclopcam/logs"

	"github.com/labelforge/labelforge/server/labeldb"
)

type Server struct {
	Log logs.Log
	DB  *labeldb.LabelDB
}

func NewServer(logger logs.Log, dbFilename string) (*Server, error) {
	db, err := labeldb.NewLabelDB(logger, dbFilename)
	if err != nil {
		return nil, err
	}
	return &Server{
		Log: logger,
		DB:  db,
	}, nil
}
