package ws

import (
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	// Register all inbound message types
	RegisterType(&MessageJoinUser{})
	RegisterType(&MessageJoinConversation{})
	RegisterType(&MessageChat{})
	RegisterType(&MessageDelivered{})
	RegisterType(&MessageSeen{})
	RegisterType(&MessagePing{})
	RegisterType(&MessagePong{})
}

func RegisterType(msg Message) {
	typeRegistry[msg.GetType()] = reflect.TypeOf(msg).Elem()
}

// GetTypeRegistry returns the type registry for testing
func GetTypeRegistry() map[string]reflect.Type {
	return typeRegistry
}
