package testutil

import (
	"github.com/google/uuid"
)

// Fixed UUIDs for deterministic testing
var (
	TestUserID     = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestReviewerID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestVendorID   = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestSurveyID1  = uuid.MustParse("00000000-0000-0000-0000-000000000020")
	TestSurveyID2  = uuid.MustParse("00000000-0000-0000-0000-000000000021")
)
