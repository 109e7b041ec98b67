package resolve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type exportsKind uint8

const (
	exportsNone exportsKind = iota
	exportsString
	exportsArray
	exportsObject
)

// exportsNode is a package.json "exports" value with object keys kept in
// document order.
type exportsNode struct {
	kind    exportsKind
	target  string
	items   []exportsNode
	keys    []string
	entries map[string]exportsNode
}

func (n *exportsNode) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	node, err := decodeExportsNode(decoder)
	if err != nil {
		return err
	}
	*n = node
	return nil
}

func (n *exportsNode) isSubpathMap() bool {
	for _, key := range n.keys {
		if strings.HasPrefix(key, ".") {
			return true
		}
	}
	return false
}

func decodeExportsNode(decoder *json.Decoder) (exportsNode, error) {
	token, err := decoder.Token()
	if err != nil {
		return exportsNode{}, err
	}
	switch typed := token.(type) {
	case string:
		return exportsNode{kind: exportsString, target: typed}, nil
	case json.Delim:
		switch typed {
		case '[':
			return decodeExportsArray(decoder)
		case '{':
			return decodeExportsObject(decoder)
		}
		return exportsNode{}, fmt.Errorf("unexpected %v in exports", typed)
	}
	return exportsNode{}, nil
}

func decodeExportsArray(decoder *json.Decoder) (exportsNode, error) {
	node := exportsNode{kind: exportsArray}
	for decoder.More() {
		item, err := decodeExportsNode(decoder)
		if err != nil {
			return exportsNode{}, err
		}
		node.items = append(node.items, item)
	}
	if _, err := decoder.Token(); err != nil {
		return exportsNode{}, err
	}
	return node, nil
}

func decodeExportsObject(decoder *json.Decoder) (exportsNode, error) {
	node := exportsNode{kind: exportsObject, entries: make(map[string]exportsNode)}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return exportsNode{}, err
		}
		key, _ := token.(string)
		item, err := decodeExportsNode(decoder)
		if err != nil {
			return exportsNode{}, err
		}
		if _, seen := node.entries[key]; !seen {
			node.keys = append(node.keys, key)
		}
		node.entries[key] = item
	}
	if _, err := decoder.Token(); err != nil {
		return exportsNode{}, err
	}
	return node, nil
}
