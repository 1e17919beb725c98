package chip8

import "fmt"

// EventKind identifies the state that changed.
type EventKind int

// Event kinds.
const (
	EventPC        EventKind = iota // Address holds the new PC
	EventSP                         // Value holds the new SP
	EventIndex                      // Address holds the new I
	EventRegister                   // Index names the register, Value holds the new value
	EventStack                      // Index names the slot, Address holds the stored return address
	EventMemory                     // Address names the written byte, Value holds the new value
	EventDelay                      // Value holds the new delay timer
	EventSound                      // Value holds the new sound timer
	EventHalted                     // Address holds PC, Err holds the halt reason
	EventReset                      // the whole machine state changed
	EventROMLoaded                  // memory from 0x200 changed, Value is unused
)

var eventKindNames = map[EventKind]string{
	EventPC:        "pc",
	EventSP:        "sp",
	EventIndex:     "index",
	EventRegister:  "register",
	EventStack:     "stack",
	EventMemory:    "memory",
	EventDelay:     "delay",
	EventSound:     "sound",
	EventHalted:    "halted",
	EventReset:     "reset",
	EventROMLoaded: "rom loaded",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event describes a single state change of the machine.
type Event struct {
	Kind    EventKind
	Address uint16
	Index   int
	Value   uint8
	Err     error
}

// Handler receives events. Handlers are called synchronously while the
// machine is locked and must not call back into the machine.
type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// bus fans out events to all subscribers in subscription order.
type bus struct {
	nextID      uint64
	subscribers []subscriber
}

func (b *bus) subscribe(handler Handler) uint64 {
	b.nextID++
	b.subscribers = append(b.subscribers, subscriber{id: b.nextID, handler: handler})
	return b.nextID
}

func (b *bus) unsubscribe(id uint64) {
	for i, sub := range b.subscribers {
		if sub.id == id {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

func (b *bus) publish(event Event) {
	for _, sub := range b.subscribers {
		sub.handler(event)
	}
}
