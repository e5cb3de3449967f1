package config

type WorkerKeyStruct struct {
	PersistGradesQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistGradesQueue: "persist_grades_queue",
}
