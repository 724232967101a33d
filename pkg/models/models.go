// Package models holds the value records shared by every visitor, client and driver:
// Node, NodeList, NodeToRegister and the small enums hung off them.
package models

import (
	"encoding/json"
	"path"
	"strings"
)

// ResourceType is the kind of entity a Node represents.
type ResourceType string

const (
	ResourceTypeFolder    ResourceType = "folder"
	ResourceTypeFile      ResourceType = "file"
	ResourceTypeContainer ResourceType = "Container"
)

// Zone is the top-level partition of a project's namespace.
type Zone int

const (
	ZoneGreenroom Zone = 0
	ZoneCore      Zone = 1
)

// ItemStatus is the lifecycle state of a Node.
type ItemStatus string

const (
	// StatusRegistered marks a reserved placeholder created during prepare.
	StatusRegistered ItemStatus = "REGISTERED"
	// StatusActive marks a node materialized and visible.
	StatusActive ItemStatus = "ACTIVE"
	// StatusArchived marks a node logically deleted.
	StatusArchived ItemStatus = "ARCHIVED"
)

// Storage is the object-store location of a FILE node.
type Storage struct {
	LocationURI string `json:"location_uri"`
	Version     string `json:"version"`
}

// Extended carries the per-template metadata bucket the source treats as a free dict.
type Extended struct {
	Tags       []string               `json:"tags"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Node represents one entity in the project's hierarchical namespace.
//
// The upstream metadata service returns a free-form JSON object; unknown fields are
// tolerated on ingress via Extra and dropped again on egress, the way the source treats
// a node as an untyped dict with property accessors.
type Node struct {
	ID          string       `json:"id"`
	Parent      string       `json:"parent,omitempty"`
	ParentPath  string       `json:"parent_path,omitempty"`
	Name        string       `json:"name"`
	Type        ResourceType `json:"type"`
	Zone        Zone         `json:"zone"`
	Status      ItemStatus   `json:"status"`
	ContainerCode string     `json:"container_code,omitempty"`
	ContainerType string     `json:"container_type,omitempty"`
	Size        int64        `json:"size"`
	Owner       string       `json:"owner,omitempty"`
	Extended    Extended     `json:"extended"`
	Storage     Storage      `json:"storage"`
	// RestorePath is the pre-archive path, populated by the metadata service on archival.
	RestorePath string `json:"restore_path,omitempty"`

	// Extra tolerates unrecognized fields returned by the metadata service; it is never
	// round-tripped back out.
	Extra map[string]interface{} `json:"-"`
}

// nodeKnownFields lists every JSON key Node itself decodes; anything else in a response
// object falls through to Extra.
var nodeKnownFields = []string{
	"id", "parent", "parent_path", "name", "type", "zone", "status",
	"container_code", "container_type", "size", "owner", "extended", "storage", "restore_path",
}

// UnmarshalJSON decodes the known fields normally, then captures whatever keys remain into
// Extra, mirroring the source's treatment of a node as an untyped dict with property
// accessors layered over a handful of recognized keys.
func (n *Node) UnmarshalJSON(data []byte) error {
	type nodeAlias Node
	var aux nodeAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Node(aux)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range nodeKnownFields {
		delete(raw, key)
	}
	if len(raw) == 0 {
		return nil
	}

	extra := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		var v interface{}
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
		extra[key] = v
	}
	n.Extra = extra
	return nil
}

// IsFolder reports whether the node is a FOLDER.
func (n Node) IsFolder() bool { return n.Type == ResourceTypeFolder }

// IsFile reports whether the node is a FILE.
func (n Node) IsFile() bool { return n.Type == ResourceTypeFile }

// IsArchived reports whether the node has been logically deleted.
func (n Node) IsArchived() bool { return n.Status == StatusArchived }

// DisplayPath is the "/"-joined path from project root to the node.
func (n Node) DisplayPath() string {
	if n.ParentPath == "" {
		return n.Name
	}
	full := n.ParentPath + "/" + n.Name
	return strings.TrimPrefix(path.Clean("/"+full), "/")
}

// Tags returns the node's tag list, or nil if none are set.
func (n Node) Tags() []string { return n.Extended.Tags }

// Namespace returns the human label for the node's zone ("Greenroom" or "Core").
func (n Node) Namespace() string {
	if n.Zone == ZoneCore {
		return "Core"
	}
	return "Greenroom"
}

// NodeList is an ordered sequence of Nodes returned by the metadata service.
type NodeList []Node

// IDs returns the set of ids contained in the list.
func (l NodeList) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(l))
	for _, n := range l {
		ids[n.ID] = struct{}{}
	}
	return ids
}

// FilterFiles returns the subset of the list that are FILE nodes.
func (l NodeList) FilterFiles() NodeList {
	out := make(NodeList, 0, len(l))
	for _, n := range l {
		if n.IsFile() {
			out = append(out, n)
		}
	}
	return out
}

// NodeToRegister is a pending registration request carried from prepare into execute.
type NodeToRegister struct {
	SourceNode           Node
	DestinationParentNode Node
}

// AppendSuffixToFilepath appends a suffix to filename before its extension, the way the
// source's append_suffix_to_filepath does for colliding registration names.
func AppendSuffixToFilepath(filename string, suffix string) string {
	dir, base := path.Split(filename)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return dir + stem + "_" + suffix + ext
}

// Project is the authoritative project record fetched once per job and threaded through
// every visitor instead of a bare project-code string.
type Project struct {
	Code string `json:"code"`
	ID   string `json:"id"`
}

// Job is the opaque (session_id, job_id) tuple updated via the dataops client on terminal
// outcome only.
type Job struct {
	SessionID string
	JobID     string
}

