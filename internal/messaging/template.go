package messaging

import "strings"

// Template placeholder tokens.
const (
	TokenName     = "[Name]"
	TokenYourName = "[Your Name]"
	TokenCompany  = "[Company]"
	TokenPosition = "[Position]"
)

// TemplateValues are the substitutions for one open conversation.
type TemplateValues struct {
	Name     string
	YourName string
	Company  string
	Position string
}

// ApplyTemplate substitutes the four placeholder tokens in body. A token
// whose value is empty is left as-is, as is any other bracketed text.
func ApplyTemplate(body string, v TemplateValues) string {
	var pairs []string
	for _, p := range [][2]string{
		{TokenYourName, v.YourName},
		{TokenName, v.Name},
		{TokenCompany, v.Company},
		{TokenPosition, v.Position},
	} {
		if p[1] != "" {
			pairs = append(pairs, p[0], p[1])
		}
	}
	if len(pairs) == 0 {
		return body
	}
	return strings.NewReplacer(pairs...).Replace(body)
}
