// Package yml wraps yaml.v3 nodes with the read-side helpers the scenario
// loader needs: keyed lookup, map/sequence traversal and scalar coercion.
package yml

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Node yaml.Node

// Lookup returns the value node of the given mapping key, or nil.
func (n *Node) Lookup(name string) *Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.EqualFold(n.Content[i].Value, name) {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

// Items iterates a sequence node.
func (n *Node) Items(callback func(index int, node *Node) error) error {
	for i := 0; i < len(n.Content); i++ {
		if err := callback(i, (*Node)(n.Content[i])); err != nil {
			return err
		}
	}
	return nil
}

// Pairs iterates a mapping node key by key.
func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if err := callback(key, (*Node)(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// Interface converts the node into plain Go values: scalars by yaml tag,
// mappings into map[string]interface{}, sequences into []interface{}.
func (n *Node) Interface() interface{} {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!bool":
			return parseBool(n.Value)
		case "!!null":
			return nil
		case "!!float":
			return parseFloat(n.Value)
		case "!!int":
			return parseInt(n.Value)
		default:
			return n.Value
		}
	case yaml.MappingNode:
		values := make(map[string]interface{})
		for i := 0; i+1 < len(n.Content); i += 2 {
			values[n.Content[i].Value] = (*Node)(n.Content[i+1]).Interface()
		}
		return values
	case yaml.SequenceNode:
		values := make([]interface{}, 0, len(n.Content))
		for i := 0; i < len(n.Content); i++ {
			values = append(values, (*Node)(n.Content[i]).Interface())
		}
		return values
	}
	return nil
}

func parseBool(value string) bool {
	return strings.EqualFold(value, "true")
}

func parseFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func parseInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}
