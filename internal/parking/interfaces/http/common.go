package http

import "time"

const timeLayout = time.RFC3339
