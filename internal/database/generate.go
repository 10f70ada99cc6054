package database

// To regenerate the reference schema dump from the sqlite migrations:
//   go generate ./internal/database

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
