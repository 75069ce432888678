package logging

// parseFields turns charmbracelet style key/value pairs into a map. Errors
// are stored as their message. A trailing odd argument is kept under
// "error" if it is an error.
func parseFields(args ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{})

	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if err, ok := args[i+1].(error); ok {
			fields[key] = err.Error()
		} else {
			fields[key] = args[i+1]
		}
	}

	if len(args)%2 == 1 {
		if err, ok := args[len(args)-1].(error); ok {
			fields["error"] = err.Error()
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
