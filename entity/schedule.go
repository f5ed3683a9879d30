package entity

// SchedulerStatus reports the daily broadcast scheduler state.
type SchedulerStatus struct {
	Running      bool   `json:"scheduler_running"`
	JobActive    bool   `json:"job_active"`
	NextRunTime  string `json:"next_run_time,omitempty"`
	ScheduleTime string `json:"schedule_time"`
	Timezone     string `json:"timezone"`
}
