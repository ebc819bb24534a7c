/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package config loads the runtime configuration of topobind tools.

Settings are layered: built-in defaults, an optional YAML file, an optional
.env file and finally environment variables.

	store:
	  backend: dynamodb
	  dynamodb:
	    region: eu-central-1
	    table: topobind
	trace:
	  level: info
*/
package config
