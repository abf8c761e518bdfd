// Package device turns raw User-Agent headers into entity.DeviceInfo.
package device

import (
	"strings"
	"time"

	"storeauth/internal/entity"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mssola/useragent"
)

const (
	TypeDesktop = "desktop"
	TypeMobile  = "mobile"
	TypeBot     = "bot"
	TypeUnknown = "unknown"
)

// Parser is safe for concurrent use. Results are cached per raw header since
// the same few browsers account for most logins.
type Parser struct {
	cache *expirable.LRU[string, entity.DeviceInfo]
}

func NewParser(size int, ttl time.Duration) *Parser {
	if size <= 0 {
		size = 1024
	}
	return &Parser{cache: expirable.NewLRU[string, entity.DeviceInfo](size, nil, ttl)}
}

// Parse never fails; an empty or unrecognised header yields TypeUnknown.
func (p *Parser) Parse(raw string) entity.DeviceInfo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entity.DeviceInfo{Type: TypeUnknown}
	}
	if info, ok := p.cache.Get(raw); ok {
		return info
	}
	info := parse(raw)
	p.cache.Add(raw, info)
	return info
}

func parse(raw string) entity.DeviceInfo {
	ua := useragent.New(raw)
	client, clientVersion := ua.Browser()
	engine, engineVersion := ua.Engine()

	info := entity.DeviceInfo{
		Type:          TypeDesktop,
		Client:        client,
		ClientVersion: clientVersion,
		Engine:        engine,
		EngineVersion: engineVersion,
		OS:            ua.OS(),
		Platform:      ua.Platform(),
	}
	switch {
	case ua.Bot():
		info.Type = TypeBot
	case ua.Mobile():
		info.Type = TypeMobile
	case client == "" && info.OS == "":
		info.Type = TypeUnknown
	}
	return info
}
