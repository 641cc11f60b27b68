package interaction

// Options is the read-only view of the options supplied with a command
// invocation. Values are stored as int64, uint64 (snowflakes), string or
// bool by the transport adapter.
type Options struct {
	values map[string]any
}

func NewOptions(values map[string]any) Options {
	return Options{values: values}
}

func (o Options) Int(name string) (int64, bool) {
	v, ok := o.values[name].(int64)
	return v, ok
}

func (o Options) String(name string) (string, bool) {
	v, ok := o.values[name].(string)
	return v, ok
}

func (o Options) Snowflake(name string) (uint64, bool) {
	v, ok := o.values[name].(uint64)
	return v, ok
}

func (o Options) Bool(name string) (bool, bool) {
	v, ok := o.values[name].(bool)
	return v, ok
}
