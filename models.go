package main

import "time"

const (
	sessionTTL            = 30 * time.Minute
	defaultRequestTimeout = 20 * time.Second
	defaultContext        = "/om2m"
	defaultBaseID         = "nscl"
)

type sessionData struct {
	ID        string
	Username  string
	Password  string
	BaseID    string
	Context   string
	CreatedAt time.Time
}

type LDAPConfig struct {
	URL            string `yaml:"url"`
	BaseDN         string `yaml:"base_dn"`
	UserFilter     string `yaml:"user_filter"`
	GroupAttribute string `yaml:"group_attribute"`
	RequiredGroup  string `yaml:"required_group"`
	UserMailDomain string `yaml:"user_mail_domain"`
	StartTLS       bool   `yaml:"start_tls"`
	SkipTLSVerify  bool   `yaml:"skip_tls_verify"`
}

type entryKind string

const (
	entryReference  entryKind = "reference"
	entryCollection entryKind = "collection"
)

// treeEntry is one child node of a resource in the navigation tree.
type treeEntry struct {
	Kind        entryKind   `json:"kind"`
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Target      string      `json:"target"`
	ContainerID string      `json:"container_id"`
	Items       []treeEntry `json:"items,omitempty"`
}

func (e treeEntry) IsCollection() bool { return e.Kind == entryCollection }

type fieldKind string

const (
	fieldContent       fieldKind = "content"
	fieldLink          fieldKind = "link"
	fieldPermissions   fieldKind = "permissions"
	fieldURIList       fieldKind = "uri_list"
	fieldSearchStrings fieldKind = "search_strings"
	fieldAnnounceTo    fieldKind = "announce_to"
	fieldAPoCPaths     fieldKind = "apoc_paths"
	fieldText          fieldKind = "text"
)

type nameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type permissionEntry struct {
	ID      string   `json:"id"`
	Flags   []string `json:"flags"`
	Holders []string `json:"holders"`
}

type apocPath struct {
	Path          string `json:"path"`
	AccessRightID string `json:"access_right_id"`
	SearchStrings string `json:"search_strings"`
}

// attributeField is a non-child field of a resource. Kind decides which of
// the remaining fields are populated.
type attributeField struct {
	Kind        fieldKind         `json:"kind"`
	Name        string            `json:"name"`
	Text        string            `json:"text,omitempty"`
	Values      []string          `json:"values,omitempty"`
	Pairs       []nameValue       `json:"pairs,omitempty"`
	Permissions []permissionEntry `json:"permissions,omitempty"`
	Paths       []apocPath        `json:"paths,omitempty"`
	Content     *contentView      `json:"content,omitempty"`
}

type actionKind string

const (
	actionRetrieve actionKind = "retrieve"
	actionExecute  actionKind = "execute"
	actionCreate   actionKind = "create"
)

type contentAction struct {
	Name    string     `json:"name"`
	Kind    actionKind `json:"kind"`
	Href    string     `json:"href"`
	Payload string     `json:"payload,omitempty"`
}

type contentEntry struct {
	Row    *nameValue     `json:"row,omitempty"`
	Action *contentAction `json:"action,omitempty"`
}

type contentView struct {
	Root    string         `json:"root"`
	Entries []contentEntry `json:"entries"`
	Error   string         `json:"error,omitempty"`
}

type resourceView struct {
	ID          string           `json:"id"`
	URL         string           `json:"url"`
	RootName    string           `json:"root_name"`
	IsBase      bool             `json:"is_base"`
	ContainerID string           `json:"container_id"`
	Children    []treeEntry      `json:"children"`
	Attributes  []attributeField `json:"attributes"`
}

type actionResult struct {
	Kind    actionKind  `json:"kind"`
	Href    string      `json:"href"`
	OK      bool        `json:"ok"`
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Rows    []nameValue `json:"rows,omitempty"`
}
