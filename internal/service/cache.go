package service

import "context"

// noCache is used when no cache is wired in.
type noCache struct{}

func (noCache) GetJSON(context.Context, string, any) bool { return false }
func (noCache) SetJSON(context.Context, string, any)      {}
func (noCache) Delete(context.Context, ...string)         {}

func cacheOrNoop(c Cache) Cache {
	if c == nil {
		return noCache{}
	}
	return c
}
