package types

import (
	"fmt"
	"net/url"
)

// Metadata field limits enforced by the launch platform.
const (
	MaxNameLength        = 32
	MaxSymbolLength      = 8
	MaxDescriptionLength = 200
)

// MetadataPolicy controls the rules that differ between deployments.
// The platform's type declares telegram/twitter links optional while the
// current product rules treat them as mandatory, so the requirement is a
// policy knob rather than a constant.
type MetadataPolicy struct {
	// RequireSocialLinks makes empty telegram/twitter links a hard error.
	// When false, missing links are reported as warnings only.
	RequireSocialLinks bool
}

// DefaultMetadataPolicy matches the current product rules.
func DefaultMetadataPolicy() MetadataPolicy {
	return MetadataPolicy{RequireSocialLinks: true}
}

// ValidateMetadata checks a token-creation request against the platform
// rules. All violations are collected; the function never fails.
func ValidateMetadata(md TokenMetadata, policy MetadataPolicy) *ValidationResult {
	result := NewValidationResult()

	if md.Name == "" {
		result.AddError("token name cannot be empty")
	} else if len(md.Name) > MaxNameLength {
		result.AddError(fmt.Sprintf("token name must be %d characters or less", MaxNameLength))
	}

	if md.Symbol == "" {
		result.AddError("token symbol cannot be empty")
	} else if len(md.Symbol) > MaxSymbolLength {
		result.AddError(fmt.Sprintf("token symbol must be %d characters or less", MaxSymbolLength))
	}

	if md.Description == "" {
		result.AddError("token description cannot be empty")
	} else if len(md.Description) > MaxDescriptionLength {
		result.AddError(fmt.Sprintf("token description must be %d characters or less", MaxDescriptionLength))
	}

	if md.ImageURL == "" {
		result.AddError("image URL cannot be empty")
	} else if !isWellFormedURL(md.ImageURL) {
		result.AddError("image URL is not a valid URL")
	}

	checkLink(result, policy, "telegram link", md.TelegramLink)
	checkLink(result, policy, "twitter link", md.TwitterLink)

	return result
}

func checkLink(result *ValidationResult, policy MetadataPolicy, name, value string) {
	if value != "" {
		return
	}
	if policy.RequireSocialLinks {
		result.AddError(name + " cannot be empty")
	} else {
		result.AddWarning(name + " is not set")
	}
}

func isWellFormedURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
