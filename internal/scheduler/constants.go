package scheduler

// LogMsgJobScheduled is logged when a periodic job is registered
const LogMsgJobScheduled = "Job scheduled"
