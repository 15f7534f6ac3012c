package job

import "context"

type LeadExporter interface {
	ExportToStore(ctx context.Context) (string, error)
}

// LeadExportJob writes a CSV snapshot of all leads to the file store.
type LeadExportJob struct {
	exporter LeadExporter
}

func NewLeadExportJob(exporter LeadExporter) *LeadExportJob {
	return &LeadExportJob{exporter: exporter}
}

func (j *LeadExportJob) Name() string {
	return "lead_export"
}

func (j *LeadExportJob) Run(ctx context.Context) error {
	if j.exporter == nil {
		return nil
	}
	_, err := j.exporter.ExportToStore(ctx)
	return err
}
