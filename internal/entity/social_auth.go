package entity

import (
	"encoding/json"
)

type SocialAuth struct {
	Base
	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Plugin         string
	ProviderUserID string `gorm:"unique"`
	AccessToken    string

	// AdditionalData is a JSON document, see SocialAuthData.
	AdditionalData string
}

func (SocialAuth) TableName() string {
	return "social_auth"
}

type SocialAuthData struct {
	RefreshToken string `json:"refresh_token,omitempty"`

	// Data holds the responses of the configured endpoints, collected at the first login.
	Data map[string]any `json:"data,omitempty"`
}

// Data decodes AdditionalData. An empty value is an empty document.
func (s *SocialAuth) Data() (SocialAuthData, error) {
	var data SocialAuthData
	if s.AdditionalData == "" {
		return data, nil
	}

	if err := json.Unmarshal([]byte(s.AdditionalData), &data); err != nil {
		return SocialAuthData{}, err
	}

	return data, nil
}

func (s *SocialAuth) SetData(data SocialAuthData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.AdditionalData = string(b)
	return nil
}
