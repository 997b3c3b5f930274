package sim

import "strings"

// NameMustBeValid panics if a name does not follow the naming convention.
// Valid names are dot-separated hierarchies of capitalized CamelCase
// elements, such as "Sim.Flash.Reader". An element of a series carries its
// position in square brackets, as in "Flash[3]".
func NameMustBeValid(name string) {
	defer func() {
		if r := recover(); r != nil {
			panic("Name " + name + " is not valid: " + r.(string))
		}
	}()

	for _, token := range strings.Split(name, ".") {
		nameTokenMustBeValid(token)
	}
}

func nameTokenMustBeValid(token string) {
	elem, indexed := splitNameToken(token)

	if elem == "" {
		panic("Name element must not be empty")
	}

	for _, c := range elem {
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			panic("Name element must not contain " + string(c))
		}
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		panic("Name element must start with a capital letter")
	}

	for _, index := range indexed {
		nameIndexMustBeValid(index)
	}
}

// splitNameToken separates the element name from its bracketed indices,
// turning "Flash[1][2]" into "Flash" and {"1]", "2]"}.
func splitNameToken(token string) (elem string, indexed []string) {
	parts := strings.Split(token, "[")
	return parts[0], parts[1:]
}

func nameIndexMustBeValid(index string) {
	if !strings.HasSuffix(index, "]") || strings.Count(index, "]") != 1 {
		panic("Name bracket must match")
	}

	digits := index[:len(index)-1]
	if digits == "" {
		panic("Name index must be integer")
	}

	for _, c := range digits {
		if c < '0' || c > '9' {
			panic("Name index must be integer")
		}
	}
}

// BuildName joins a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}
