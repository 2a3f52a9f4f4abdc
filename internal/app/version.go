package app

const (
	ServiceName = "mentorship-service"
	Version     = "1.0.0"
)
