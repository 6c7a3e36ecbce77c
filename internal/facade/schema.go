// internal/facade/schema.go
package facade

const submissionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "ApplicationSubmission",
  "type": "object",
  "required": ["propertyId", "applicantName", "agentId", "landlordId"],
  "properties": {
    "propertyId": {
      "type": "string",
      "minLength": 1
    },
    "applicantName": {
      "type": "string",
      "minLength": 1,
      "maxLength": 200
    },
    "tenantUserId": {
      "type": "string"
    },
    "agentId": {
      "type": "string",
      "minLength": 1
    },
    "landlordId": {
      "type": "string",
      "minLength": 1
    }
  },
  "additionalProperties": false
}`
