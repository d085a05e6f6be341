package ci

// Labels flattens the CI context into report metadata labels. Only populated
// values are included so merged metadata stays sparse. The keys match the
// ones derived from a local git checkout, which take precedence when both
// sources are present.
func (e Environment) Labels() map[string]string {
	labels := make(map[string]string)
	if e.Provider != ProviderUnknown {
		labels["ci_provider"] = e.Provider.String()
	}
	if e.RepositoryFullName != "" {
		labels["repository"] = e.RepositoryFullName
	}
	if e.ReferenceName != "" {
		labels["branch"] = e.ReferenceName
	}
	if e.CommitHash != "" {
		labels["commit"] = e.CommitHash
	}
	return labels
}

// DefaultUserID derives a stable scan-history owner from the CI namespace so
// history queries group runs by organization rather than by runner.
func (e Environment) DefaultUserID() string {
	if e.Namespace != "" {
		return e.Namespace
	}
	return e.RepositoryFullName
}

// ResolveUserID picks the user scans are attributed to. An explicit ID wins,
// then the CI namespace, then "local".
func ResolveUserID(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env, ok := Current(); ok {
		if id := env.DefaultUserID(); id != "" {
			return id
		}
	}
	return "local"
}
