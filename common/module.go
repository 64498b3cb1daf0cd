package common

type Module string

const (
	ModuleEvents Module = "events"
)

func (m Module) String() string {
	return string(m)
}
