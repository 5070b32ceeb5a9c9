package ecs

// UpdateFrame is handed to every system for one scheduler pass.
type UpdateFrame struct {
	Index     uint64
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(index uint64, dt float64, storage *Storage, commands *Commands) *UpdateFrame {
	return &UpdateFrame{
		Index:     index,
		DeltaTime: dt,
		Commands:  commands,
		Storage:   storage,
	}
}
