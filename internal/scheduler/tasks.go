package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQualitySweep = "analytics.quality.sweep"

const TaskQualityAudit = "analytics.quality.audit"

type QualityAuditPayload struct {
	ClientName string `json:"clientName"`
}

func NewQualitySweepTask() *asynq.Task {
	return asynq.NewTask(TaskQualitySweep, nil)
}

func NewQualityAuditTask(payload QualityAuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQualityAudit, data), nil
}

func ParseQualityAuditPayload(task *asynq.Task) (QualityAuditPayload, error) {
	var payload QualityAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QualityAuditPayload{}, err
	}
	return payload, nil
}
