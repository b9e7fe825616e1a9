package service

import (
	"context"
	"io"
	"tripsettle/pkg/export"
	"tripsettle/pkg/logger"
	"tripsettle/storage"
)

type ExportService interface {
	Settlements(ctx context.Context, w io.Writer) error
}

type exportService struct {
	stg storage.ISettlementStorage
	log logger.ILogger
}

func NewExportService(stg storage.IStorage, log logger.ILogger) ExportService {
	return &exportService{
		stg: stg.Settlement(),
		log: log,
	}
}

func (s *exportService) Settlements(ctx context.Context, w io.Writer) error {
	list, err := s.stg.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := export.WriteSettlements(w, list); err != nil {
		s.log.Error("failed to write settlements workbook", logger.Error(err))
		return err
	}
	return nil
}
