package scheduler

import (
	"encoding/json"
	"fmt"

	"lead_intake_backend/internal/audit"

	"github.com/hibiken/asynq"
)

const TaskAuditRecord = "audit.record"

func NewAuditRecordTask(rec audit.Record) (*asynq.Task, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRecord, data), nil
}

func ParseAuditRecordPayload(task *asynq.Task) (audit.Record, error) {
	var rec audit.Record
	if err := json.Unmarshal(task.Payload(), &rec); err != nil {
		return audit.Record{}, err
	}
	if rec.Action == "" || rec.Source == "" {
		return audit.Record{}, fmt.Errorf("audit record %s is incomplete", rec.ID)
	}
	return rec, nil
}
