package payload

import (
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"github.com/sunthewhat/easy-cert-batch/type/shared/model"
)

type RunDetailPayload struct {
	Run    *model.Run        `json:"run"`
	Errors []roster.RowError `json:"errors"`
}

type GenerateFailurePayload struct {
	Kind   string            `json:"kind"`
	Run    *model.Run        `json:"run,omitempty"`
	Errors []roster.RowError `json:"errors"`
}

type TemplatePayload struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}
