/*
Package executor sends a single resolved HTTP request and captures the response.

# Overview

Execute is the only network entry point. It:
  - builds the request with the caller's context
  - applies headers verbatim
  - measures duration and request/response sizes
  - folds transport failures into RequestResult.Error

Callers that need retries, token refresh or path substitution layer them on top
(see the runner package). Execute never retries.

# Example Usage

	req := &executor.Request{
		Method: "POST",
		URL:    "https://api.example.com/users",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: `{"name": "John Doe"}`,
	}

	result, err := executor.Execute(ctx, req, 30*time.Second)
	if err != nil {
		return err
	}
	if result.Error != "" {
		fmt.Println("request failed:", result.Error)
	}

	fmt.Printf("Status: %d %s (%s)\n", result.Status, result.StatusText,
		executor.FormatDuration(result.Duration))

# Thread Safety

Execute is safe to call concurrently. Each call builds its own client.
*/
package executor
