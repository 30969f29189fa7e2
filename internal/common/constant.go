package common

import "time"

// DefaultTCPPort is the port the legacy desktop client connects to.
const DefaultTCPPort = 2555

// DefaultResetTokenValidity is how long a password reset token stays usable.
const DefaultResetTokenValidity = 30 * time.Minute

// ResetTokenBytes is the amount of entropy in a password reset token.
const ResetTokenBytes = 32
