package sensor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	TypeHead  = "head"
	TypeMate  = "mate"
	TypeChild = "child"
)

var (
	// ErrInvalidUUID is returned for an identifier that is not a canonical UUID.
	ErrInvalidUUID = errors.New("invalid node uuid")
	// ErrNilRelation is returned for a null entry among the related nodes.
	ErrNilRelation = errors.New("related node is null")
	// ErrNestedRelation is returned when a mate or child has connections of its own.
	ErrNestedRelation = errors.New("related nodes cannot have connections")
)

// Namespace is the UUID namespace used for derived node identifiers.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:sensor-node"))

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Node describes a sensor node and its direct relations.
type Node struct {
	uuid string

	NodeName       string
	NodeType       string
	NodeImageURI   string
	ConnectedNodes *ConnectedNodes
}

// ConnectedNodes holds the mate and the children of a node.
type ConnectedNodes struct {
	NodeMate      *Node   `json:"nodeMate,omitempty"`
	ChildrenNodes []*Node `json:"childrenNodes,omitempty"`
}

// New creates a node with a random UUID.
func New(name, nodeType string) *Node {
	return &Node{
		uuid:     uuid.NewString(),
		NodeName: name,
		NodeType: nodeType,
	}
}

// NewDerived creates a node whose UUID is derived from its type and name.
func NewDerived(name, nodeType string) *Node {
	n := &Node{NodeName: name, NodeType: nodeType}
	n.uuid = DeriveUUID(nodeType, name, randomSuffix())
	return n
}

// ParseRef returns a bare node referring to an existing identifier.
func ParseRef(id string) (*Node, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid node uuid %q: %w", id, err)
	}
	return &Node{uuid: parsed.String()}, nil
}

// DeriveUUID computes a name-based UUID from the sanitized type, name and suffix.
// The same inputs always yield the same identifier.
func DeriveUUID(nodeType, name, suffix string) string {
	seed := strings.Join([]string{Sanitize(nodeType), Sanitize(name), suffix}, ":")
	return uuid.NewSHA1(Namespace, []byte(seed)).String()
}

// Sanitize lowercases s and collapses every run of characters outside [a-z0-9] into a dash.
func Sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = unsafeChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ValidUUID reports whether id is a UUID in its hyphenated 36 character form.
func ValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Validate checks that the node and its relations carry valid identifiers and
// that the relations form a single level below the node.
func (n *Node) Validate() error {
	if !ValidUUID(n.uuid) {
		return fmt.Errorf("%w: %q", ErrInvalidUUID, n.uuid)
	}
	if n.ConnectedNodes == nil {
		return nil
	}
	if m := n.ConnectedNodes.NodeMate; m != nil {
		if err := m.validateRelated(); err != nil {
			return fmt.Errorf("nodeMate: %w", err)
		}
	}
	for i, child := range n.ConnectedNodes.ChildrenNodes {
		if child == nil {
			return fmt.Errorf("childrenNodes[%d]: %w", i, ErrNilRelation)
		}
		if err := child.validateRelated(); err != nil {
			return fmt.Errorf("childrenNodes[%d]: %w", i, err)
		}
	}
	return nil
}

func (n *Node) validateRelated() error {
	if n.Mate() != nil || len(n.Children()) > 0 {
		return ErrNestedRelation
	}
	if !ValidUUID(n.uuid) {
		return fmt.Errorf("%w: %q", ErrInvalidUUID, n.uuid)
	}
	return nil
}

// UUID returns the node identifier.
func (n *Node) UUID() string {
	return n.uuid
}

// RegenerateUUID assigns a fresh identifier. It is derived from the node type and
// name when both are set, random otherwise.
func (n *Node) RegenerateUUID() string {
	if Sanitize(n.NodeType) != "" && Sanitize(n.NodeName) != "" {
		n.uuid = DeriveUUID(n.NodeType, n.NodeName, randomSuffix())
	} else {
		n.uuid = uuid.NewString()
	}
	return n.uuid
}

// SetMate attaches mate as this node's mate and marks its type accordingly.
func (n *Node) SetMate(mate *Node) {
	mate.NodeType = TypeMate
	n.connections().NodeMate = mate
}

// AddChild appends child to this node's children and marks its type accordingly.
func (n *Node) AddChild(child *Node) {
	child.NodeType = TypeChild
	c := n.connections()
	c.ChildrenNodes = append(c.ChildrenNodes, child)
}

// Mate returns the mate node, if any.
func (n *Node) Mate() *Node {
	if n.ConnectedNodes == nil {
		return nil
	}
	return n.ConnectedNodes.NodeMate
}

// Children returns the child nodes in insertion order.
func (n *Node) Children() []*Node {
	if n.ConnectedNodes == nil {
		return nil
	}
	return n.ConnectedNodes.ChildrenNodes
}

// Related returns the node itself followed by its mate and children.
func (n *Node) Related() []*Node {
	nodes := []*Node{n}
	if m := n.Mate(); m != nil {
		nodes = append(nodes, m)
	}
	return append(nodes, n.Children()...)
}

func (n *Node) connections() *ConnectedNodes {
	if n.ConnectedNodes == nil {
		n.ConnectedNodes = &ConnectedNodes{}
	}
	return n.ConnectedNodes
}

type wireNode struct {
	UUID           string          `json:"uuid"`
	NodeName       string          `json:"nodeName"`
	NodeType       string          `json:"nodeType"`
	NodeImageURI   string          `json:"nodeImageUri,omitempty"`
	ConnectedNodes *ConnectedNodes `json:"connectedNodes,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{
		UUID:           n.uuid,
		NodeName:       n.NodeName,
		NodeType:       n.NodeType,
		NodeImageURI:   n.NodeImageURI,
		ConnectedNodes: n.ConnectedNodes,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = Node{
		uuid:           w.UUID,
		NodeName:       w.NodeName,
		NodeType:       w.NodeType,
		NodeImageURI:   w.NodeImageURI,
		ConnectedNodes: w.ConnectedNodes,
	}
	return nil
}
