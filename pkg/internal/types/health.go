package types

// HealthResponse 组件健康检查结果.
type HealthResponse struct {
	Status    string `json:"status"`
	Component string `json:"component"`
	Type      string `json:"type,omitempty"`
	Error     string `json:"error,omitempty"`
}
