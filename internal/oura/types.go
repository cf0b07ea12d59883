package oura

import "github.com/nikdata/oura-hrv/internal"

// Sample:
//
//	{
//	    "data": [
//	        {
//	            "id": "8f0f...",
//	            "day": "2025-09-20",
//	            "type": "long_sleep",
//	            "bedtime_start": "2025-09-19T23:04:12-05:00",
//	            "heart_rate": {"interval": 300.0, "items": [62, 60, null], "timestamp": "2025-09-19T23:04:12.000-05:00"},
//	            "hrv": {"interval": 300.0, "items": [42, null, 38], "timestamp": "2025-09-19T23:04:12.000-05:00"}
//	        }
//	    ],
//	    "next_token": null
//	}
type sleepResponse struct {
	Data      []internal.SleepSession `json:"data"`
	NextToken *string                 `json:"next_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
