package i18n

// entries pairs each English key with its Spanish rendering.
var entries = []struct{ en, es string }{
	// OAuth callback page
	{"Authorization Cancelled", "Autorización Cancelada"},
	{"You cancelled access in Google. You can close this window and return to the application.", "Has cancelado el acceso en Google. Puedes cerrar esta ventana y volver a la aplicación."},
	{"Authorization Complete", "Autorización Completada"},
	{"The authorization code was captured successfully.", "El código de autorización se ha capturado correctamente."},
	{"You can close this window and return to the application.", "Puedes cerrar esta ventana y volver a la aplicación."},
	{"Page not found", "Página no encontrada"},
	{"Authorization code not found", "No se encontró el código de autorización"},
	{"Invalid authorization state", "Estado de autorización no válido"},

	// Errors
	{"Could not start the OAuth server.", "No se pudo iniciar el servidor OAuth."},
	{"Authorization cancelled by the user.", "Autorización cancelada por el usuario."},
	{"The authorization code was not received in time.", "No se recibió el código de autorización a tiempo."},
	{"An account is already configured with this email.", "Ya hay una cuenta configurada con este correo."},
	{"Could not complete the OAuth authorization.", "No se pudo completar la autorización OAuth."},
	{"The mount folder is in use. Make sure no file, terminal or window is using it.", "La carpeta de montaje está en uso. Asegúrate de que ningún archivo, terminal o ventana la esté usando."},
	{"google-drive-ocamlfuse is not installed.", "google-drive-ocamlfuse no está instalado."},
	{"google-drive-ocamlfuse did not respond in time.", "google-drive-ocamlfuse no respondió a tiempo."},
	{"The OAuth token is invalid or has expired. Reauthorize the account.", "El token OAuth no es válido o ha caducado. Vuelve a autorizar la cuenta."},
	{"The label cannot be empty. Enter a unique name for the account.", "La etiqueta no puede estar vacía. Introduce un nombre único para la cuenta."},
	{"The label cannot contain path separators.", "La etiqueta no puede contener separadores de ruta."},
	{"An account with this label already exists. Use a different one.", "Ya existe una cuenta con esta etiqueta. Usa otra diferente."},
	{"This label belongs to a deleted account. Restore it or delete it permanently first.", "Esta etiqueta pertenece a una cuenta eliminada. Restáurala o elimínala definitivamente primero."},
	{"Client ID and Client Secret are required.", "El Client ID y el Client Secret son obligatorios."},
	{"The Client ID must look like 1234567890-abcdefghijklmnopqrstuvwxyz.apps.googleusercontent.com", "El Client ID debe tener el formato 1234567890-abcdefghijklmnopqrstuvwxyz.apps.googleusercontent.com"},
	{"The Client Secret must be an alphanumeric string of at least 24 characters.", "El Client Secret debe ser una cadena alfanumérica de al menos 24 caracteres."},
	{"An account with this Client ID already exists. Create separate credentials for each Google Drive.", "Ya existe una cuenta con este Client ID. Crea credenciales distintas para cada Google Drive."},
	{"Account not found.", "Cuenta no encontrada."},
	{"The account is mounted. Unmount it before continuing.", "La cuenta está montada. Desmóntala antes de continuar."},
	{"The account is not configured. Reauthorize it first.", "La cuenta no está configurada. Vuelve a autorizarla primero."},
	{"The mount point must be an absolute path.", "El punto de montaje debe ser una ruta absoluta."},
	{"Could not decrypt the client secret. Reauthorize the account.", "No se pudo descifrar el client secret. Vuelve a autorizar la cuenta."},
	{"Could not save the configuration.", "No se pudo guardar la configuración."},
	{"Some files could not be removed.", "Algunos archivos no se pudieron eliminar."},
	{"An active account already uses the same Client ID or label.", "Ya hay una cuenta activa con el mismo Client ID o etiqueta."},

	// Command line.
	{"%s mounted at %s.", "%s montada en %s."},
	{"%s needs to be reauthorized: gdmount reauth %s", "%s necesita una nueva autorización: gdmount reauth %s"},
	{"%s unmounted.", "%s desmontada."},
	{"%s was unmounted from %s outside the application.", "%s se desmontó de %s fuera de la aplicación."},
	{"AUTO", "AUTO"},
	{"Account %s configured (%s).", "Cuenta %s configurada (%s)."},
	{"Account %s configured.", "Cuenta %s configurada."},
	{"Account %s moved to the deleted accounts.", "Cuenta %s movida a las cuentas eliminadas."},
	{"Account %s permanently deleted.", "Cuenta %s eliminada definitivamente."},
	{"Account %s reauthorized.", "Cuenta %s autorizada de nuevo."},
	{"Account %s restored without configuration. Run reauth before mounting.", "Cuenta %s restaurada sin configuración. Ejecuta reauth antes de montarla."},
	{"Account %s restored.", "Cuenta %s restaurada."},
	{"Also remove %s?", "¿Eliminar también %s?"},
	{"Also remove the mount folder %s?", "¿Eliminar también la carpeta de montaje %s?"},
	{"CLIENT ID", "CLIENT ID"},
	{"Client Secret", "Client Secret"},
	{"Delete account %s?", "¿Eliminar la cuenta %s?"},
	{"EMAIL", "CORREO"},
	{"Install it from https://github.com/astrada/google-drive-ocamlfuse.", "Instálalo desde https://github.com/astrada/google-drive-ocamlfuse."},
	{"LABEL", "ETIQUETA"},
	{"MOUNT POINT", "PUNTO DE MONTAJE"},
	{"No accounts configured.", "No hay cuentas configuradas."},
	{"No deleted accounts.", "No hay cuentas eliminadas."},
	{"Nothing changed.", "No se cambió nada."},
	{"Permanently delete %s? This cannot be undone.", "¿Eliminar %s definitivamente? No se puede deshacer."},
	{"Removed %s.", "Eliminado %s."},
	{"STATUS", "ESTADO"},
	{"Saved.", "Guardado."},
	{"Waiting for the authorization in the browser...", "Esperando la autorización en el navegador..."},
	{"Watching mounts. Press Ctrl+C to stop.", "Vigilando los montajes. Pulsa Ctrl+C para salir."},
	{"configured", "configurada"},
	{"mounted", "montada"},
	{"unconfigured", "sin configurar"},
	{"yes", "sí"},

	// Desktop window.
	{"%s needs to be reauthorized.", "%s necesita una nueva autorización."},
	{"About", "Acerca de"},
	{"Account %s restored without configuration. Reauthorize it before mounting.", "Cuenta %s restaurada sin configuración. Vuelve a autorizarla antes de montarla."},
	{"Accounts", "Cuentas"},
	{"Add account", "Añadir cuenta"},
	{"An internal error stopped the last action (%s). Please retry. If this repeats, restart the application.", "Un error interno detuvo la última acción (%s). Inténtalo de nuevo. Si se repite, reinicia la aplicación."},
	{"Ask before deleting the mount folder", "Preguntar antes de eliminar la carpeta de montaje"},
	{"Authorize", "Autorizar"},
	{"Automount", "Montaje automático"},
	{"Cancel", "Cancelar"},
	{"Delete", "Eliminar"},
	{"Delete permanently", "Eliminar definitivamente"},
	{"Deleted", "Eliminadas"},
	{"Don't ask again", "No volver a preguntar"},
	{"Import credentials JSON...", "Importar JSON de credenciales..."},
	{"Label", "Etiqueta"},
	{"Language", "Idioma"},
	{"Licenses", "Licencias"},
	{"Links", "Enlaces"},
	{"Mount", "Montar"},
	{"Mount at startup", "Montar al iniciar"},
	{"Mount automount accounts", "Montar las cuentas automáticas"},
	{"Mount point...", "Punto de montaje..."},
	{"Mount several Google Drive accounts with google-drive-ocamlfuse.", "Monta varias cuentas de Google Drive con google-drive-ocamlfuse."},
	{"Mount tool", "Herramienta de montaje"},
	{"Mounting %s...", "Montando %s..."},
	{"Mounting accounts marked for automount...", "Montando las cuentas marcadas para montaje automático..."},
	{"Keep", "Conservar"},
	{"Please wait", "Espera por favor"},
	{"Preferences", "Preferencias"},
	{"Quit", "Salir"},
	{"Reauthorize", "Volver a autorizar"},
	{"Restore", "Restaurar"},
	{"Restore and reauthorize", "Restaurar y volver a autorizar"},
	{"Restoring %s...", "Restaurando %s..."},
	{"Show", "Mostrar"},
	{"Start at login, minimized to the tray", "Iniciar con la sesión, minimizado en la bandeja"},
	{"Third-party notices", "Avisos de terceros"},
	{"Unexpected Error", "Error inesperado"},
	{"Unmount", "Desmontar"},
	{"Unmount all", "Desmontar todo"},
	{"Unmounting %s...", "Desmontando %s..."},
	{"Unmounting all accounts...", "Desmontando todas las cuentas..."},
	{"Version", "Versión"},
	{"View third-party notices", "Ver avisos de terceros"},
	{"e.g. work", "p. ej. trabajo"},
}
