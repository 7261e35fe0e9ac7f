package domain

type CompanySource string

const (
	CompanyFromTitle     CompanySource = "title"
	CompanyFromBody      CompanySource = "body"
	CompanyFromURLDomain CompanySource = "url-domain"
	CompanyFromURLPath   CompanySource = "url-path"
	CompanyFromSubdomain CompanySource = "subdomain"
)

type CompanyCandidate struct {
	Name   string
	Source CompanySource
}
