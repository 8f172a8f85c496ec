package ros

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	Sep       = "/"
	GlobalNS  = "/"
	PrivateNS = "~"
)

// NameMap maps names to names, e.g. remappings given on the command line.
type NameMap map[string]string

var (
	validNameRegexp = regexp.MustCompile(`^[~/]?([a-zA-Z]\w*/)*[a-zA-Z]\w*/?$`)
)

// getNamespace returns the namespace containing name, with a trailing
// separator.
func getNamespace(name string) string {
	if len(name) == 0 {
		return GlobalNS
	} else if name[len(name)-1] == '/' {
		name = name[:len(name)-1]
	}
	result := name[:strings.LastIndex(name, Sep)+1]
	if len(result) == 0 {
		return Sep
	}
	return result
}

// qualifyNodeName splits a node name into its global namespace and base
// name.
func qualifyNodeName(nodeName string) (string, string, error) {
	if nodeName == "" {
		return "", "", errors.New("empty node name")
	}
	if strings.HasPrefix(nodeName, PrivateNS) {
		return "", "", errors.New("node name should not contain '~'")
	}

	var components []string
	for _, c := range strings.Split(canonicalizeName(nodeName), Sep) {
		if len(c) > 0 {
			components = append(components, c)
		}
	}
	if len(components) == 0 {
		return "", "", errors.Errorf("invalid node name %q", nodeName)
	}
	last := len(components) - 1
	return GlobalNS + strings.Join(components[:last], Sep), components[last], nil
}

// resolveName resolves name against base, the fully qualified name of the
// node: relative names live in the node's namespace and private names
// under the node itself.
func resolveName(name string, base string, mappings NameMap) string {
	var resolvedName string

	if len(name) == 0 {
		return getNamespace(base)
	}

	canonName := canonicalizeName(name)
	if isGlobalName(canonName) {
		resolvedName = canonName
	} else if isPrivateName(canonName) {
		resolvedName = canonicalizeName(base + Sep + canonName[1:])
	} else {
		resolvedName = getNamespace(base) + canonName
	}

	if remapped, ok := mappings[resolvedName]; ok {
		return remapped
	}
	return resolvedName
}

func isValidName(name string) bool {
	if len(name) == 0 || name == "/" || name == "~" {
		return true
	}
	return validNameRegexp.MatchString(name)
}

func isGlobalName(name string) bool {
	return strings.HasPrefix(name, GlobalNS)
}

func isPrivateName(name string) bool {
	return strings.HasPrefix(name, PrivateNS)
}

// canonicalizeName removes repeated and trailing separators.
func canonicalizeName(name string) string {
	if name == GlobalNS || name == "" {
		return name
	}
	var components []string
	for _, word := range strings.Split(name, Sep) {
		if len(word) > 0 {
			components = append(components, word)
		}
	}
	if isGlobalName(name) {
		return GlobalNS + strings.Join(components, Sep)
	}
	return strings.Join(components, Sep)
}

// NameResolver resolves graph names for one node and applies its
// remappings.
type NameResolver struct {
	namespace     string
	qualifiedName string
	mapping       NameMap
}

func newNameResolver(namespace string, nodeName string, remapping NameMap) *NameResolver {
	n := new(NameResolver)
	n.namespace = canonicalizeName(namespace)
	if !isGlobalName(n.namespace) {
		n.namespace = GlobalNS + n.namespace
	}
	n.qualifiedName = canonicalizeName(n.namespace + Sep + nodeName)
	n.mapping = make(NameMap)
	for k, v := range remapping {
		n.mapping[resolveName(k, n.qualifiedName, nil)] = resolveName(v, n.qualifiedName, nil)
	}
	return n
}

func (n *NameResolver) resolve(name string) string {
	return resolveName(name, n.qualifiedName, nil)
}

func (n *NameResolver) remap(name string) string {
	return resolveName(name, n.qualifiedName, n.mapping)
}
