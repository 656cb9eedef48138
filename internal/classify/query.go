package classify

import (
	"fmt"
	"time"
)

// BuildQueries returns the search queries for one company across the given
// roles. Four templates per role: a dated careers query, two portal-scoped
// queries and a generic careers-page query. An empty role list yields no
// queries, which is not an error.
func BuildQueries(company string, roles []string, dateWindowDays int, now time.Time) []string {
	queries := make([]string, 0, len(roles)*4)

	anchor := now.AddDate(0, 0, -dateWindowDays).Format("2006-01-02")

	for _, role := range roles {
		queries = append(queries,
			fmt.Sprintf("%s %s jobs careers after:%s", company, role, anchor),
			fmt.Sprintf("%s %s openings site:naukri.com", company, role),
			fmt.Sprintf("%s %s jobs site:linkedin.com/jobs", company, role),
			fmt.Sprintf("%s careers page %s", company, role),
		)
	}

	return queries
}
