/*
Package types defines core data structures used throughout docportal.

# Collection Types

Node:
  - One entry of an Insomnia-style collection tree
  - Folder, endpoint, or both (see ClassifyNode)
  - Children and nested object properties kept in document order

NormalizedDocument:
  - Title, sorted sections, environments
  - DefaultDocument is returned for any unparsable input

Environment:
  - Named flat mapping used to resolve {{ _.key }} placeholders

# Derived Types

EndpointData:
  - An endpoint with URL, headers, parameters and body resolved
  - Rebuilt whenever the document or active environment changes

NavItem:
  - Navigation tree entry; folders hold Children, endpoints hold Method

# Runtime Types

RequestResult:
  - HTTP response data from a try-it-out execution

Credential, AuthTokens, Organization:
  - Values persisted through the key/value store

HistoryEntry:
  - A recorded try-it-out execution

# Example Collection

	name: Payments API
	collection:
	  - name: Users
	    meta:
	      sortKey: -10
	    children:
	      - name: Get User
	        method: GET
	        url: "{{ _.baseUrl }}/users/{id}"
	environments:
	  name: Base Environment
	  subEnvironments:
	    - name: Prod
	      data:
	        baseUrl: https://api.example.com
*/
package types
