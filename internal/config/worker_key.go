package config

type WorkerKeyStruct struct {
	NotificationsQueue       string
	RecomputeInterpretations string
}

var WorkerKey = &WorkerKeyStruct{
	NotificationsQueue:       "notifications_queue",
	RecomputeInterpretations: "recompute_interpretations_queue",
}
