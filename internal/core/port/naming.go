package port

type NameResolver interface {
	Resolve(uri string) string
}
