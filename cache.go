package main

import (
	"reflect"
	"sync"
)

type cacheMapType map[string]interface{}

// Cache holds the last value seen per source and forwards a value to the
// dispatcher only when it differs from the cached one.
type Cache struct {
	cacheMap   cacheMapType
	cacheMutex sync.Mutex
	dispatcher *EventDispatcher
}

func newCache(d *EventDispatcher) *Cache {
	return &Cache{cacheMap: make(cacheMapType), dispatcher: d}
}

func (c *Cache) update(name string, data interface{}) bool {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	old, ok := c.cacheMap[name]
	if ok && reflect.DeepEqual(old, data) {
		return false
	}
	c.cacheMap[name] = data
	if c.dispatcher != nil {
		c.dispatcher.broadcastEvent(name, data)
	}
	return true
}

func (c *Cache) get(name string) interface{} {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	return c.cacheMap[name]
}

func (c *Cache) clear() {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cacheMap = make(cacheMapType)
}

func (c *Cache) dump() cacheMapType {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	n := make(cacheMapType)
	for k, v := range c.cacheMap {
		n[k] = v
	}
	return n
}
